package config

import (
	"Tukarin-Backend/internal/api/handlers"
	"Tukarin-Backend/internal/api/routes"
	"Tukarin-Backend/internal/middleware"
	"Tukarin-Backend/internal/utils"
	"Tukarin-Backend/pkg/chat"
	"Tukarin-Backend/pkg/exchange"
	"Tukarin-Backend/pkg/jwt"
	"Tukarin-Backend/pkg/notification"
	"Tukarin-Backend/pkg/product"
	"Tukarin-Backend/pkg/push"
	"Tukarin-Backend/pkg/rating"
	"Tukarin-Backend/pkg/realtime"
	"Tukarin-Backend/pkg/user"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB, realtimeDB *mongo.Database) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// realtime mirror and push transport
	realtimeStore := realtime.NewMongoStore(realtimeDB)
	realtimeService := realtime.NewRealtimeService(realtimeStore)
	notifier := push.NewLogNotifier()

	// Repository
	userRepository := user.NewUserRepository(db)
	productRepository := product.NewProductRepository(db)
	exchangeRepository := exchange.NewExchangeRepository(db)
	messageRepository := chat.NewMessageRepository(db)
	ratingRepository := rating.NewRatingRepository(db)
	notificationRepository := notification.NewNotificationRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	notificationService := notification.NewNotificationService(
		notificationRepository,
		userRepository,
		realtimeService,
		notifier,
	)
	availability := exchange.NewAvailabilityChecker(productRepository, exchangeRepository)
	exchangeService := exchange.NewExchangeService(
		exchangeRepository,
		userRepository,
		availability,
		realtimeService,
		notificationService,
	)
	chatService := chat.NewChatService(
		messageRepository,
		exchangeRepository,
		realtimeService,
		notificationService,
	)
	ratingService := rating.NewRatingService(
		ratingRepository,
		exchangeRepository,
		realtimeService,
	)

	// Handler
	exchangeHandler := handlers.NewExchangeHandler(exchangeService, validator)
	chatHandler := handlers.NewChatHandler(chatService, validator)
	ratingHandler := handlers.NewRatingHandler(ratingService, validator)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// routes
	routesConfig := routes.Config{
		App:                 app,
		ExchangeHandler:     exchangeHandler,
		ChatHandler:         chatHandler,
		RatingHandler:       ratingHandler,
		NotificationHandler: notificationHandler,
		Middleware:          middlewares,
		JWTService:          jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
