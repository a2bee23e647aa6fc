package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"procure-dispatch-api-server/internal/models"
)

// Engine owns every legal mutation of a procurement request. Each operation
// is a read, a validation against the snapshot, and exactly one
// compare-and-swap against the ledger; a failed precondition leaves the
// ledger unchanged.
type Engine struct {
	ledger Ledger
	dir    Directory
	now    func() time.Time
}

func NewEngine(ledger Ledger, dir Directory) *Engine {
	return &Engine{ledger: ledger, dir: dir, now: time.Now}
}

// NewItem describes one requested SKU at creation time.
type NewItem struct {
	Name     string
	Unit     string
	Quantity float64
}

// QuoteItem is one vendor price for a named line item.
type QuoteItem struct {
	Name        string
	QuotedPrice float64
}

// ReceiptLine is the franchise-side count for one line item after delivery.
type ReceiptLine struct {
	Name             string
	ReceivedQuantity float64
	DamagedQuantity  float64
}

// CreateRequest opens a new request in REQUESTED state. Item names must be
// unique within the request since they key the packing checklist and the
// receipt. Callers are expected to have validated shapes (non-empty list,
// positive quantities) at the binding layer.
func (e *Engine) CreateRequest(ctx context.Context, franchiseID, createdBy string, items []NewItem) (*models.ProcurementRequest, error) {
	if len(items) == 0 {
		return nil, incompleteQuotation("", "", "request must contain at least one item")
	}
	seen := make(map[string]bool, len(items))
	lineItems := make([]models.LineItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, invalidReceiptQuantity("", it.Name, "requested quantity must be > 0")
		}
		if seen[it.Name] {
			return nil, invalidReceiptQuantity("", it.Name, "duplicate item name")
		}
		seen[it.Name] = true
		lineItems = append(lineItems, models.LineItem{Name: it.Name, Unit: it.Unit, Quantity: it.Quantity})
	}

	now := e.now()
	req := &models.ProcurementRequest{
		RequestID:   fmt.Sprintf("PR-%s", strings.ToUpper(uuid.New().String()[:8])),
		FranchiseID: franchiseID,
		Items:       lineItems,
		Status:      string(StatusRequested),
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.ledger.Insert(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (e *Engine) GetRequest(ctx context.Context, requestID string) (*models.ProcurementRequest, error) {
	return e.ledger.Get(ctx, requestID)
}

func (e *Engine) ListRequests(ctx context.Context, f Filter) ([]models.ProcurementRequest, error) {
	return e.ledger.List(ctx, f)
}

// SubmitQuotation binds a vendor and its prices to a REQUESTED request and
// moves it to QUOTED. Every line item must receive a price > 0 (zero means
// "not quoted"). A request that already carries a quotation fails with
// CONFLICTING_QUOTATION; a concurrent submission races on the ledger swap and
// the loser gets STALE_STATE.
func (e *Engine) SubmitQuotation(ctx context.Context, requestID, vendorID string, quotes []QuoteItem) (*models.ProcurementRequest, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.VendorID != "" || Status(req.Status) == StatusQuoted {
		return nil, conflictingQuotation(requestID)
	}
	if err := requireStatus(req, StatusRequested); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, incompleteQuotation(requestID, "", "quotation must contain at least one item")
	}

	prices := make(map[string]float64, len(quotes))
	for _, q := range quotes {
		if req.Item(q.Name) == nil {
			return nil, incompleteQuotation(requestID, q.Name, "quoted item is not part of the request")
		}
		if q.QuotedPrice <= 0 {
			return nil, incompleteQuotation(requestID, q.Name, "quoted price must be > 0")
		}
		prices[q.Name] = q.QuotedPrice
	}

	total := decimal.Zero
	for i := range req.Items {
		price, ok := prices[req.Items[i].Name]
		if !ok {
			return nil, incompleteQuotation(requestID, req.Items[i].Name, "item has no quoted price")
		}
		req.Items[i].QuotedPrice = price
		total = total.Add(lineValue(req.Items[i].Quantity, price))
	}

	req.VendorID = vendorID
	req.Status = string(StatusQuoted)
	req.TotalQuotedAmount, _ = total.Float64()
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve moves QUOTED -> APPROVED.
func (e *Engine) Approve(ctx context.Context, requestID string) (*models.ProcurementRequest, error) {
	return e.transition(ctx, requestID, StatusApproved, StatusQuoted)
}

// Reject terminates a request before fulfillment begins.
func (e *Engine) Reject(ctx context.Context, requestID string) (*models.ProcurementRequest, error) {
	return e.transition(ctx, requestID, StatusRejected, StatusRequested, StatusQuoted, StatusApproved)
}

// Cancel terminates any non-terminal request. Admin action.
func (e *Engine) Cancel(ctx context.Context, requestID string) (*models.ProcurementRequest, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	cur := Status(req.Status)
	if cur.Terminal() {
		return nil, invalidTransition(requestID, cur, StatusRequested, StatusQuoted, StatusApproved, StatusPreparing, StatusReadyForPickup)
	}
	req.Status = string(StatusCancelled)
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// BeginPacking moves APPROVED -> PREPARING. Vendor action; only the assigned
// vendor sees the request at all.
func (e *Engine) BeginPacking(ctx context.Context, requestID, vendorID string) (*models.ProcurementRequest, error) {
	req, err := e.vendorRequest(ctx, requestID, vendorID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusApproved); err != nil {
		return nil, err
	}
	req.Status = string(StatusPreparing)
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// RecordPackingCheck marks one line item verified. Pure bookkeeping while in
// PREPARING; once the whole checklist and the weight are in, the engine
// itself advances to READY_FOR_PICKUP within the same swap, so two callers
// can never both observe "almost done" and race past the precondition.
func (e *Engine) RecordPackingCheck(ctx context.Context, requestID, vendorID, itemName string, checked bool) (*models.ProcurementRequest, error) {
	req, err := e.vendorRequest(ctx, requestID, vendorID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusPreparing); err != nil {
		return nil, err
	}
	item := req.Item(itemName)
	if item == nil {
		return nil, &Error{Code: CodeNotFound, RequestID: requestID, Item: itemName, Detail: "no such line item"}
	}
	item.PackingChecked = checked
	e.advanceIfPacked(req)
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// RecordWeight calibrates the dispatch weight, once, while in PREPARING.
func (e *Engine) RecordWeight(ctx context.Context, requestID, vendorID string, weightKg float64) (*models.ProcurementRequest, error) {
	req, err := e.vendorRequest(ctx, requestID, vendorID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusPreparing); err != nil {
		return nil, err
	}
	if weightKg <= 0 {
		return nil, invalidWeight(requestID, fmt.Sprintf("weight must be > 0, got %v", weightKg))
	}
	if req.ActualWeight > 0 {
		return nil, invalidWeight(requestID, "weight already recorded")
	}
	req.ActualWeight = weightKg
	e.advanceIfPacked(req)
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Dispatch moves READY_FOR_PICKUP -> COMPLETED: the goods leave the vendor.
func (e *Engine) Dispatch(ctx context.Context, requestID, vendorID string) (*models.ProcurementRequest, error) {
	req, err := e.vendorRequest(ctx, requestID, vendorID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, StatusReadyForPickup); err != nil {
		return nil, err
	}
	req.Status = string(StatusCompleted)
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// RecordReceipt stores the franchise-side counts and derives the settlement.
// All-or-nothing: every line item must appear exactly once and satisfy
// 0 <= damaged <= received <= requested, or the whole call fails with no
// partial mutation. The engine never infers a missing line as
// "received in full" — the franchise must say so explicitly.
func (e *Engine) RecordReceipt(ctx context.Context, requestID, franchiseID string, lines []ReceiptLine) (*models.ProcurementRequest, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if franchiseID != "" && req.FranchiseID != franchiseID {
		return nil, NotFoundError(requestID)
	}
	if err := requireStatus(req, StatusCompleted); err != nil {
		return nil, err
	}
	if req.Settlement != nil {
		return nil, invalidTransition(requestID, StatusCompleted).withDetail("receipt already recorded")
	}

	byName := make(map[string]ReceiptLine, len(lines))
	for _, line := range lines {
		if req.Item(line.Name) == nil {
			return nil, invalidReceiptQuantity(requestID, line.Name, "no such line item")
		}
		if _, dup := byName[line.Name]; dup {
			return nil, invalidReceiptQuantity(requestID, line.Name, "duplicate receipt line")
		}
		byName[line.Name] = line
	}

	// Validate everything before touching the aggregate.
	for i := range req.Items {
		item := &req.Items[i]
		line, ok := byName[item.Name]
		if !ok {
			return nil, invalidReceiptQuantity(requestID, item.Name, "receipt line missing for item")
		}
		if line.DamagedQuantity < 0 || line.ReceivedQuantity < 0 {
			return nil, invalidReceiptQuantity(requestID, item.Name, "quantities must be >= 0")
		}
		if line.DamagedQuantity > line.ReceivedQuantity {
			return nil, invalidReceiptQuantity(requestID, item.Name, "damaged quantity exceeds received quantity")
		}
		if line.ReceivedQuantity > item.Quantity {
			return nil, invalidReceiptQuantity(requestID, item.Name, "received quantity exceeds requested quantity")
		}
	}

	receivedValue := decimal.Zero
	damagedLoss := decimal.Zero
	for i := range req.Items {
		item := &req.Items[i]
		line := byName[item.Name]
		item.ReceivedQuantity = line.ReceivedQuantity
		item.DamagedQuantity = line.DamagedQuantity
		receivedValue = receivedValue.Add(lineValue(line.ReceivedQuantity, item.QuotedPrice))
		damagedLoss = damagedLoss.Add(lineValue(line.DamagedQuantity, item.QuotedPrice))
	}

	quoted := decimal.NewFromFloat(req.TotalQuotedAmount)
	net := quoted.Sub(damagedLoss)

	recv, _ := receivedValue.Float64()
	loss, _ := damagedLoss.Float64()
	settle, _ := net.Float64()
	req.Settlement = &models.Settlement{
		ReceivedValue: recv,
		DamagedLoss:   loss,
		NetSettlement: settle,
		Discrepancy:   !quoted.Equal(receivedValue),
		RecordedAt:    e.now(),
	}
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// vendorRequest fetches a request on behalf of a vendor. An empty vendorID
// (admin paths) skips the assignment check; a mismatch reads as NOT_FOUND so
// vendors cannot probe each other's requests.
func (e *Engine) vendorRequest(ctx context.Context, requestID, vendorID string) (*models.ProcurementRequest, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if vendorID != "" && req.VendorID != vendorID {
		return nil, NotFoundError(requestID)
	}
	return req, nil
}

// advanceIfPacked moves PREPARING to READY_FOR_PICKUP once every item is
// checked and the weight is recorded.
func (e *Engine) advanceIfPacked(req *models.ProcurementRequest) {
	if Status(req.Status) != StatusPreparing || req.ActualWeight <= 0 {
		return
	}
	for i := range req.Items {
		if !req.Items[i].PackingChecked {
			return
		}
	}
	req.Status = string(StatusReadyForPickup)
}

// transition performs a plain from-set -> to move with no extra payload.
func (e *Engine) transition(ctx context.Context, requestID string, to Status, from ...Status) (*models.ProcurementRequest, error) {
	req, err := e.ledger.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(req, from...); err != nil {
		return nil, err
	}
	req.Status = string(to)
	req.UpdatedAt = e.now()
	if err := e.ledger.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func requireStatus(req *models.ProcurementRequest, want ...Status) *Error {
	cur := Status(req.Status)
	for _, w := range want {
		if cur == w {
			return nil
		}
	}
	return invalidTransition(req.RequestID, cur, want...)
}

func (e *Error) withDetail(detail string) *Error {
	e.Detail = detail
	return e
}

func lineValue(quantity, price float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price))
}
