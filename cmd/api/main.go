// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"procure-dispatch-api-server/config"
	"procure-dispatch-api-server/internal/api/routes"
	"procure-dispatch-api-server/internal/database"
	"procure-dispatch-api-server/internal/procurement"
	"procure-dispatch-api-server/internal/s3"
	"procure-dispatch-api-server/internal/socket"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	db := client.Database(cfg.Mongo.DBName)

	if err := database.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	// The S3 document archive is optional; without a bucket, generated
	// documents live only in the ledger.
	var uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 uploader: %v", err)
		}
	}

	wsHub := socket.NewHub()
	ledger := database.NewMongoLedger(db)
	directory := database.NewMongoDirectory(db)
	engine := procurement.NewEngine(ledger, directory)
	aggregator := procurement.NewAggregator(ledger, directory)

	router := routes.SetupRouter(cfg, db, engine, aggregator, uploader, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
