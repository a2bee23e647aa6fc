package database

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/config"
	"procure-dispatch-api-server/internal/auth"
	"procure-dispatch-api-server/internal/models"
)

// SeedAdmin makes sure the bootstrap admin account exists.
func SeedAdmin(db *mongo.Database, cfg config.Config) error {
	userCollection := db.Collection("users")

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": cfg.Admin.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    cfg.Admin.Email,
		Name:     "Admin",
		Password: hashedPassword,
		Role:     "admin",
		ActorID:  "admin-system",
		Status:   "active",
	}

	if _, err := userCollection.InsertOne(context.Background(), admin); err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
