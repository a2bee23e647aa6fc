package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User struct matches the document in MongoDB. ActorID is the stable identity
// carried in the JWT; for franchise users it pairs with FranchiseID, for
// vendor users with VendorID.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email       string             `bson:"email" json:"email"`
	Name        string             `bson:"name" json:"name"`
	Password    string             `bson:"password" json:"-"`
	Role        string             `bson:"role" json:"role"` // admin, franchise, vendor, delivery_partner
	ActorID     string             `bson:"actorID" json:"actorID"`
	FranchiseID string             `bson:"franchiseID,omitempty" json:"franchiseID,omitempty"`
	VendorID    string             `bson:"vendorID,omitempty" json:"vendorID,omitempty"`
	Status      string             `bson:"status" json:"status"`
}
