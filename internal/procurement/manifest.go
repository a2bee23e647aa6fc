package procurement

import (
	"context"
	"fmt"

	"procure-dispatch-api-server/internal/models"
)

// Document generation. Each generator is a pure derivation of the current
// ledger state: items are copied into the document so later mutation of the
// live request cannot alter an issued manifest. Plain calls are idempotent —
// the stored document is returned as-is. force mints a successor snapshot
// with the next per-request sequence number; sequence counters persist so a
// document id is never reused.

// BiltyInput carries the consignment-note details known only at dispatch.
type BiltyInput struct {
	NumberOfPackages int
	DeliveryPartner  string
	VehicleNumber    string
	VehicleType      string
}

// GenerateDeliveryChallan snapshots the dispatch manifest. Preconditions:
// status READY_FOR_PICKUP or COMPLETED, weight recorded.
func (e *Engine) GenerateDeliveryChallan(ctx context.Context, requestID string, force bool) (*models.Document, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusReadyForPickup, StatusCompleted); err != nil {
		return nil, err
	}
	if req.ActualWeight <= 0 {
		return nil, invalidWeight(requestID, "weight not recorded")
	}
	if req.DeliveryChallan != nil && !force {
		return req.DeliveryChallan, nil
	}

	doc, err := e.newDocument(ctx, req, models.DocTypeDeliveryChallan, false)
	if err != nil {
		return nil, err
	}
	doc.TotalWeight = req.ActualWeight
	doc.TotalAmount = req.TotalQuotedAmount

	req.DeliveryChallan = doc
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return doc, nil
}

// GenerateGRN snapshots received/damaged quantities alongside the original
// quoted prices. Precondition: receipt recorded.
func (e *Engine) GenerateGRN(ctx context.Context, requestID string, force bool) (*models.Document, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Settlement == nil {
		return nil, invalidTransition(requestID, Status(req.Status), StatusCompleted).withDetail("receipt not recorded")
	}
	if req.GRN != nil && !force {
		return req.GRN, nil
	}

	doc, err := e.newDocument(ctx, req, models.DocTypeGRN, true)
	if err != nil {
		return nil, err
	}
	doc.TotalAmount = req.Settlement.NetSettlement
	doc.TotalWeight = req.ActualWeight

	req.GRN = doc
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return doc, nil
}

// GenerateInvoice snapshots the quoted amounts once the request is approved.
// The invoice date is what the audit date-range predicate evaluates against.
func (e *Engine) GenerateInvoice(ctx context.Context, requestID string, force bool) (*models.Document, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusApproved, StatusPreparing, StatusReadyForPickup, StatusCompleted); err != nil {
		return nil, err
	}
	if req.Invoice != nil && !force {
		return req.Invoice, nil
	}

	doc, err := e.newDocument(ctx, req, models.DocTypeInvoice, false)
	if err != nil {
		return nil, err
	}
	doc.TotalAmount = req.TotalQuotedAmount
	doc.InvoiceNumber = fmt.Sprintf("INV-%s-%d", req.RequestID, doc.Sequence)
	doc.InvoiceDate = doc.GeneratedAt

	req.Invoice = doc
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return doc, nil
}

// GenerateBilty snapshots the consignment note for the logistics leg.
// Preconditions: status READY_FOR_PICKUP or COMPLETED.
func (e *Engine) GenerateBilty(ctx context.Context, requestID string, in BiltyInput, force bool) (*models.Document, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusReadyForPickup, StatusCompleted); err != nil {
		return nil, err
	}
	if req.Bilty != nil && !force {
		return req.Bilty, nil
	}

	doc, err := e.newDocument(ctx, req, models.DocTypeBilty, false)
	if err != nil {
		return nil, err
	}
	doc.TotalWeight = req.ActualWeight
	doc.BiltyNumber = fmt.Sprintf("BLT-%s-%d", req.RequestID, doc.Sequence)
	doc.NumberOfPackages = in.NumberOfPackages
	doc.DeliveryPartner = in.DeliveryPartner
	doc.VehicleNumber = in.VehicleNumber
	doc.VehicleType = in.VehicleType

	req.Bilty = doc
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return doc, nil
}

// newDocument builds the common snapshot: frozen items, party names, the
// deterministic id from the per-request sequence counter.
func (e *Engine) newDocument(ctx context.Context, req *models.ProcurementRequest, docType string, withReceipt bool) (*models.Document, error) {
	franchiseName := req.FranchiseID
	if e.dir != nil {
		if fr, err := e.dir.Franchise(ctx, req.FranchiseID); err == nil {
			franchiseName = fr.Name
		}
	}
	vendorName := req.VendorID
	if e.dir != nil && req.VendorID != "" {
		if v, err := e.dir.Vendor(ctx, req.VendorID); err == nil {
			vendorName = v.Name
		}
	}

	items := make([]models.DocumentItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.DocumentItem{
			Name:        it.Name,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			QuotedPrice: it.QuotedPrice,
		}
		if withReceipt {
			items[i].ReceivedQuantity = it.ReceivedQuantity
			items[i].DamagedQuantity = it.DamagedQuantity
		}
	}

	if req.DocumentSeq == nil {
		req.DocumentSeq = make(map[string]int)
	}
	req.DocumentSeq[docType]++
	seq := req.DocumentSeq[docType]

	return &models.Document{
		DocID:       fmt.Sprintf("%s-%s-%d", docType, req.RequestID, seq),
		Type:        docType,
		RequestID:   req.RequestID,
		Sequence:    seq,
		Items:       items,
		Franchise:   franchiseName,
		Vendor:      vendorName,
		GeneratedAt: e.now(),
	}, nil
}
