package routes

import (
	"Tukarin-Backend/internal/api/handlers"
	"Tukarin-Backend/internal/middleware"
	"Tukarin-Backend/pkg/jwt"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	ExchangeHandler     handlers.ExchangeHandler
	ChatHandler         handlers.ChatHandler
	RatingHandler       handlers.RatingHandler
	NotificationHandler handlers.NotificationHandler
	Middleware          middleware.Middleware
	JWTService          jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Exchanges()
	c.Chats()
	c.Ratings()
	c.Notifications()
	c.GuestRoute()
}

func (c *Config) Exchanges() {
	exchanges := c.App.Group("/api/v1/exchanges", c.Middleware.AuthMiddleware(c.JWTService))
	{
		exchanges.Post("", c.ExchangeHandler.RequestExchange)
		exchanges.Get("", c.ExchangeHandler.GetUserExchanges)
		exchanges.Get("/incoming", c.ExchangeHandler.GetIncomingExchanges)
		exchanges.Get("/outgoing", c.ExchangeHandler.GetOutgoingExchanges)
		exchanges.Get("/product/:productId", c.ExchangeHandler.GetProductExchanges)
		exchanges.Get("/:id", c.ExchangeHandler.GetExchangeDetails)
		exchanges.Post("/:id/approve", c.ExchangeHandler.ApproveExchange)
		exchanges.Post("/:id/decline", c.ExchangeHandler.DeclineExchange)
		exchanges.Post("/:id/confirm", c.ExchangeHandler.ConfirmCompletion)
		exchanges.Post("/:id/cancel", c.ExchangeHandler.CancelExchange)
	}
}

func (c *Config) Chats() {
	chats := c.App.Group("/api/v1/chats", c.Middleware.AuthMiddleware(c.JWTService))
	{
		chats.Get("", c.ChatHandler.GetChatList)
		chats.Get("/history", c.ChatHandler.GetChatHistory)
		chats.Post("/messages", c.ChatHandler.SendMessage)
		chats.Patch("/messages/status", c.ChatHandler.UpdateMessageStatus)
		chats.Post("/client-status", c.ChatHandler.UpdateClientStatus)
	}
}

func (c *Config) Ratings() {
	ratings := c.App.Group("/api/v1/ratings", c.Middleware.AuthMiddleware(c.JWTService))
	{
		ratings.Post("/users", c.RatingHandler.RateUser)
		ratings.Post("/products", c.RatingHandler.RateProduct)
		ratings.Get("/users/:id", c.RatingHandler.GetUserRatings)
		ratings.Get("/products/:id", c.RatingHandler.GetProductRatings)
	}
}

func (c *Config) Notifications() {
	notifications := c.App.Group("/api/v1/notifications", c.Middleware.AuthMiddleware(c.JWTService))
	{
		notifications.Get("", c.NotificationHandler.GetNotifications)
		notifications.Patch("/:id/read", c.NotificationHandler.MarkAsRead)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
