package config

import (
	"Tukarin-Backend/internal/utils"
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectRealtimeStore opens the mongo database backing the realtime chat
// room and counter mirrors.
func ConnectRealtimeStore() (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(utils.GetConfig("MONGO_URI")))
	if err != nil {
		log.Fatalf("Realtime store connection failed: %v", err)
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Realtime store ping failed: %v", err)
		return nil, err
	}

	dbName := utils.GetConfig("MONGO_DB_NAME")
	if dbName == "" {
		dbName = "tukarin_realtime"
	}
	return client.Database(dbName), nil
}
