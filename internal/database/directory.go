package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/internal/models"
)

// MongoDirectory resolves franchises and vendors from their collections.
type MongoDirectory struct {
	DB *mongo.Database
}

func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{DB: db}
}

func (d *MongoDirectory) Franchise(ctx context.Context, franchiseID string) (*models.Franchise, error) {
	var franchise models.Franchise
	err := d.DB.Collection("franchises").FindOne(ctx, bson.M{"franchiseID": franchiseID}).Decode(&franchise)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("franchise %s not found", franchiseID)
		}
		return nil, err
	}
	return &franchise, nil
}

func (d *MongoDirectory) Vendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := d.DB.Collection("vendors").FindOne(ctx, bson.M{"vendorID": vendorID}).Decode(&vendor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vendor %s not found", vendorID)
		}
		return nil, err
	}
	return &vendor, nil
}
