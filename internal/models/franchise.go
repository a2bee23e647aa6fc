// server/internal/models/franchise.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Franchise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FranchiseID string             `bson:"franchiseID" json:"franchiseID"` // User-friendly unique ID, e.g., "node-pune-01"
	Name        string             `bson:"name" json:"name"`
	OwnerName   string             `bson:"ownerName" json:"ownerName"`
	Address     Address            `bson:"address" json:"address"`
	Status      string             `bson:"status" json:"status"` // ACTIVE, INACTIVE
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
