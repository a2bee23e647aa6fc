package models

import "time"

// Document types.
const (
	DocTypeDeliveryChallan = "DC"
	DocTypeGRN             = "GRN"
	DocTypeInvoice         = "INVOICE"
	DocTypeBilty           = "BILTY"
)

// DocumentItem is a frozen copy of a line item at generation time.
type DocumentItem struct {
	Name             string  `bson:"name" json:"name"`
	Quantity         float64 `bson:"quantity" json:"quantity"`
	Unit             string  `bson:"unit" json:"unit"`
	QuotedPrice      float64 `bson:"quotedPrice,omitempty" json:"quotedPrice,omitempty"`
	ReceivedQuantity float64 `bson:"receivedQuantity,omitempty" json:"receivedQuantity,omitempty"`
	DamagedQuantity  float64 `bson:"damagedQuantity,omitempty" json:"damagedQuantity,omitempty"`
}

// Document is a generated, content-addressed snapshot (DC, GRN, Invoice or
// Bilty). Items are copied in at generation time so a later mutation of the
// live request can never retroactively change an issued manifest. DocID is
// deterministic: {type}-{requestID}-{sequence}; sequence numbers are never
// reused even across regenerations.
type Document struct {
	DocID       string         `bson:"docID" json:"docID"`
	Type        string         `bson:"type" json:"type"`
	RequestID   string         `bson:"requestID" json:"requestID"`
	Sequence    int            `bson:"sequence" json:"sequence"`
	Items       []DocumentItem `bson:"items" json:"items"`
	TotalWeight float64        `bson:"totalWeight,omitempty" json:"totalWeight,omitempty"`
	TotalAmount float64        `bson:"totalAmount,omitempty" json:"totalAmount,omitempty"`
	Franchise   string         `bson:"franchise,omitempty" json:"franchise,omitempty"`
	Vendor      string         `bson:"vendor,omitempty" json:"vendor,omitempty"`

	// Invoice only.
	InvoiceNumber string    `bson:"invoiceNumber,omitempty" json:"invoiceNumber,omitempty"`
	InvoiceDate   time.Time `bson:"invoiceDate,omitempty" json:"invoiceDate,omitempty"`

	// Bilty only.
	BiltyNumber      string `bson:"biltyNumber,omitempty" json:"biltyNumber,omitempty"`
	NumberOfPackages int    `bson:"numberOfPackages,omitempty" json:"numberOfPackages,omitempty"`
	DeliveryPartner  string `bson:"deliveryPartner,omitempty" json:"deliveryPartner,omitempty"`
	VehicleNumber    string `bson:"vehicleNumber,omitempty" json:"vehicleNumber,omitempty"`
	VehicleType      string `bson:"vehicleType,omitempty" json:"vehicleType,omitempty"`

	GeneratedAt time.Time `bson:"generatedAt" json:"generatedAt"`
}
