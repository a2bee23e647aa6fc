package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vendor struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VendorID  string             `bson:"vendorID" json:"vendorID"`
	Name      string             `bson:"name" json:"name"`
	GSTNumber string             `bson:"gstNumber,omitempty" json:"gstNumber,omitempty"`
	Address   Address            `bson:"address" json:"address"`
	Status    string             `bson:"status" json:"status"` // ACTIVE, INACTIVE
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
