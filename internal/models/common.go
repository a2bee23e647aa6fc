// server/internal/models/common.go
package models

// Address is a structured address object shared by franchises and vendors.
type Address struct {
	FullText string `bson:"fullText" json:"fullText"`
	City     string `bson:"city,omitempty" json:"city,omitempty"`
	Pincode  string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}
