package migration

import (
	entities2 "Tukarin-Backend/entities"
	"fmt"
	"log"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities2.User{}); err != nil {
		log.Fatalf("Error migrating user database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Product{}); err != nil {
		log.Fatalf("Error migrating product database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Exchange{}); err != nil {
		log.Fatalf("Error migrating exchange database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Message{}); err != nil {
		log.Fatalf("Error migrating message database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.UserRating{}); err != nil {
		log.Fatalf("Error migrating user rating database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.ProductRating{}); err != nil {
		log.Fatalf("Error migrating product rating database: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities2.Notification{}); err != nil {
		log.Fatalf("Error migrating notification database: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
