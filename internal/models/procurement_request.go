package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineItem is one SKU inside a procurement request. Name, unit and quantity
// are fixed at creation; the vendor fills quotedPrice during quotation, the
// franchise fills receivedQuantity/damagedQuantity at receipt time.
type LineItem struct {
	Name             string  `bson:"name" json:"name"`
	Unit             string  `bson:"unit" json:"unit"`
	Quantity         float64 `bson:"quantity" json:"quantity"`
	QuotedPrice      float64 `bson:"quotedPrice,omitempty" json:"quotedPrice"`
	PackingChecked   bool    `bson:"packingChecked" json:"packingChecked"`
	ReceivedQuantity float64 `bson:"receivedQuantity,omitempty" json:"receivedQuantity"`
	DamagedQuantity  float64 `bson:"damagedQuantity,omitempty" json:"damagedQuantity"`
}

// Settlement holds the figures derived at receipt time. They are cached here
// but always re-derivable from the stored quantities and quoted prices.
type Settlement struct {
	ReceivedValue float64   `bson:"receivedValue" json:"receivedValue"`
	DamagedLoss   float64   `bson:"damagedLoss" json:"damagedLoss"`
	NetSettlement float64   `bson:"netSettlement" json:"netSettlement"`
	Discrepancy   bool      `bson:"discrepancy" json:"discrepancy"`
	RecordedAt    time.Time `bson:"recordedAt" json:"recordedAt"`
}

// ProcurementRequest is the aggregate root of the whole lifecycle. Status and
// quantities stored here are the single source of truth; every mutation goes
// through the ledger as a compare-and-swap on Revision.
type ProcurementRequest struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID         string             `bson:"requestID" json:"requestID"`
	FranchiseID       string             `bson:"franchiseID" json:"franchiseId"`
	VendorID          string             `bson:"vendorID,omitempty" json:"assignedVendorId,omitempty"`
	Items             []LineItem         `bson:"items" json:"items"`
	Status            string             `bson:"status" json:"status"`
	TotalQuotedAmount float64            `bson:"totalQuotedAmount" json:"totalQuotedAmount"`
	ActualWeight      float64            `bson:"actualWeight,omitempty" json:"actualWeight"`
	Settlement        *Settlement        `bson:"settlement,omitempty" json:"settlement,omitempty"`
	Invoice           *Document          `bson:"invoice,omitempty" json:"invoice,omitempty"`
	DeliveryChallan   *Document          `bson:"deliveryChallan,omitempty" json:"deliveryChallan,omitempty"`
	GRN               *Document          `bson:"grn,omitempty" json:"grn,omitempty"`
	Bilty             *Document          `bson:"bilty,omitempty" json:"bilty,omitempty"`
	DocumentSeq       map[string]int     `bson:"documentSeq,omitempty" json:"-"`
	Revision          int64              `bson:"revision" json:"-"`
	CreatedBy         string             `bson:"createdBy" json:"createdBy"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Item returns a pointer to the line item with the given name, or nil.
func (r *ProcurementRequest) Item(name string) *LineItem {
	for i := range r.Items {
		if r.Items[i].Name == name {
			return &r.Items[i]
		}
	}
	return nil
}
