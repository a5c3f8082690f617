package main

import (
	"Tukarin-Backend/cmd/config"
	migration "Tukarin-Backend/cmd/database/migrate"
	"Tukarin-Backend/internal/utils"
	"log"
)

func main() {
	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	realtimeDB, err := config.ConnectRealtimeStore()
	if err != nil {
		log.Fatalf("failed to connect realtime store: %v", err)
	}

	app, err := config.NewApp(db, realtimeDB)
	if err != nil {
		log.Fatalf("failed to set up application: %v", err)
	}

	port := utils.GetConfig("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Fatal(app.Listen(":" + port))
}
