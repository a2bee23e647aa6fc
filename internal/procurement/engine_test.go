package procurement

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procure-dispatch-api-server/internal/models"
)

func createRequest(t *testing.T, e *Engine, items ...NewItem) *models.ProcurementRequest {
	t.Helper()
	if len(items) == 0 {
		items = []NewItem{
			{Name: "Tomato", Unit: "kg", Quantity: 10},
			{Name: "Onion", Unit: "kg", Quantity: 5},
		}
	}
	req, err := e.CreateRequest(context.Background(), "FR-001", "user-1", items)
	require.NoError(t, err)
	return req
}

func quoteAll(t *testing.T, e *Engine, req *models.ProcurementRequest, price float64) *models.ProcurementRequest {
	t.Helper()
	quotes := make([]QuoteItem, len(req.Items))
	for i, item := range req.Items {
		quotes[i] = QuoteItem{Name: item.Name, QuotedPrice: price}
	}
	out, err := e.SubmitQuotation(context.Background(), req.RequestID, "VND-001", quotes)
	require.NoError(t, err)
	return out
}

// Drives a fresh request to READY_FOR_PICKUP.
func readyRequest(t *testing.T, e *Engine, weight float64) *models.ProcurementRequest {
	t.Helper()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)
	_, err := e.Approve(ctx, req.RequestID)
	require.NoError(t, err)
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)
	for _, item := range req.Items {
		_, err = e.RecordPackingCheck(ctx, req.RequestID, "VND-001", item.Name, true)
		require.NoError(t, err)
	}
	out, err := e.RecordWeight(ctx, req.RequestID, "VND-001", weight)
	require.NoError(t, err)
	require.Equal(t, string(StatusReadyForPickup), out.Status)
	return out
}

func TestCreateRequestValidation(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	_, err := e.CreateRequest(ctx, "FR-001", "user-1", nil)
	assert.Equal(t, CodeIncompleteQuotation, CodeOf(err))

	_, err = e.CreateRequest(ctx, "FR-001", "user-1", []NewItem{{Name: "Tomato", Unit: "kg", Quantity: 0}})
	assert.Equal(t, CodeInvalidReceiptQuantity, CodeOf(err))

	_, err = e.CreateRequest(ctx, "FR-001", "user-1", []NewItem{
		{Name: "Tomato", Unit: "kg", Quantity: 5},
		{Name: "Tomato", Unit: "kg", Quantity: 3},
	})
	assert.Equal(t, CodeInvalidReceiptQuantity, CodeOf(err))

	req := createRequest(t, e)
	assert.Equal(t, string(StatusRequested), req.Status)
	assert.Regexp(t, `^PR-[0-9A-F-]{8}$`, req.RequestID)
	assert.EqualValues(t, 1, req.Revision)
}

func TestSubmitQuotationComputesTotal(t *testing.T) {
	e, _ := newTestEngine()
	req := createRequest(t, e)

	out, err := e.SubmitQuotation(context.Background(), req.RequestID, "VND-001", []QuoteItem{
		{Name: "Tomato", QuotedPrice: 20},
		{Name: "Onion", QuotedPrice: 14.5},
	})
	require.NoError(t, err)
	assert.Equal(t, string(StatusQuoted), out.Status)
	assert.Equal(t, "VND-001", out.VendorID)
	// 10*20 + 5*14.5
	assert.Equal(t, 272.5, out.TotalQuotedAmount)
}

func TestSubmitQuotationIncomplete(t *testing.T) {
	e, ledger := newTestEngine()
	req := createRequest(t, e)
	ctx := context.Background()

	_, err := e.SubmitQuotation(ctx, req.RequestID, "VND-001", []QuoteItem{{Name: "Tomato", QuotedPrice: 20}})
	assert.Equal(t, CodeIncompleteQuotation, CodeOf(err))

	_, err = e.SubmitQuotation(ctx, req.RequestID, "VND-001", []QuoteItem{
		{Name: "Tomato", QuotedPrice: 20},
		{Name: "Onion", QuotedPrice: 0},
	})
	assert.Equal(t, CodeIncompleteQuotation, CodeOf(err))

	_, err = e.SubmitQuotation(ctx, req.RequestID, "VND-001", []QuoteItem{
		{Name: "Tomato", QuotedPrice: 20},
		{Name: "Onion", QuotedPrice: 14},
		{Name: "Garlic", QuotedPrice: 90},
	})
	assert.Equal(t, CodeIncompleteQuotation, CodeOf(err))

	// Failed quotations leave the ledger untouched.
	stored, err := ledger.Get(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusRequested), stored.Status)
	assert.Empty(t, stored.VendorID)
	assert.EqualValues(t, 1, stored.Revision)
}

func TestSubmitQuotationConflict(t *testing.T) {
	e, _ := newTestEngine()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)

	_, err := e.SubmitQuotation(context.Background(), req.RequestID, "VND-002", []QuoteItem{
		{Name: "Tomato", QuotedPrice: 18},
		{Name: "Onion", QuotedPrice: 12},
	})
	assert.Equal(t, CodeConflictingQuotation, CodeOf(err))
}

func TestConcurrentQuotationsSingleWinner(t *testing.T) {
	e, ledger := newTestEngine()
	req := createRequest(t, e)
	ctx := context.Background()

	quotes := []QuoteItem{{Name: "Tomato", QuotedPrice: 20}, {Name: "Onion", QuotedPrice: 10}}
	vendors := []string{"VND-001", "VND-002", "VND-003", "VND-004"}
	errs := make([]error, len(vendors))

	var wg sync.WaitGroup
	for i, vendorID := range vendors {
		wg.Add(1)
		go func(i int, vendorID string) {
			defer wg.Done()
			_, errs[i] = e.SubmitQuotation(ctx, req.RequestID, vendorID, quotes)
		}(i, vendorID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		code := CodeOf(err)
		assert.Contains(t, []Code{CodeStaleState, CodeConflictingQuotation}, code)
	}
	assert.Equal(t, 1, winners)

	stored, err := ledger.Get(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusQuoted), stored.Status)
	assert.EqualValues(t, 2, stored.Revision)
}

func TestIllegalTransitionLeavesStateUnchanged(t *testing.T) {
	e, ledger := newTestEngine()
	req := createRequest(t, e)
	ctx := context.Background()

	_, err := e.Approve(ctx, req.RequestID)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, StatusRequested, pe.Status)
	assert.Equal(t, []Status{StatusQuoted}, pe.Expected)

	stored, err := ledger.Get(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusRequested), stored.Status)
}

func TestRejectWindow(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	for _, setup := range []func() string{
		func() string { return createRequest(t, e).RequestID },
		func() string {
			req := createRequest(t, e)
			quoteAll(t, e, req, 20)
			return req.RequestID
		},
		func() string {
			req := createRequest(t, e)
			quoteAll(t, e, req, 20)
			_, err := e.Approve(ctx, req.RequestID)
			require.NoError(t, err)
			return req.RequestID
		},
	} {
		out, err := e.Reject(ctx, setup())
		require.NoError(t, err)
		assert.Equal(t, string(StatusRejected), out.Status)
	}

	// Once fulfillment starts the reject window is closed.
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)
	_, err := e.Approve(ctx, req.RequestID)
	require.NoError(t, err)
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)
	_, err = e.Reject(ctx, req.RequestID)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestCancel(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	req := readyRequest(t, e, 9.8)
	out, err := e.Cancel(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, string(StatusCancelled), out.Status)

	_, err = e.Cancel(ctx, req.RequestID)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	_, err = e.Cancel(ctx, "PR-MISSING")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestVendorScoping(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)
	_, err := e.Approve(ctx, req.RequestID)
	require.NoError(t, err)

	// A different vendor cannot even see the request.
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-999")
	assert.Equal(t, CodeNotFound, CodeOf(err))

	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)
}

func TestRecordWeightValidation(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)
	_, err := e.Approve(ctx, req.RequestID)
	require.NoError(t, err)
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	_, err = e.RecordWeight(ctx, req.RequestID, "VND-001", 0)
	assert.Equal(t, CodeInvalidWeight, CodeOf(err))
	_, err = e.RecordWeight(ctx, req.RequestID, "VND-001", -2)
	assert.Equal(t, CodeInvalidWeight, CodeOf(err))

	_, err = e.RecordWeight(ctx, req.RequestID, "VND-001", 9.8)
	require.NoError(t, err)
	_, err = e.RecordWeight(ctx, req.RequestID, "VND-001", 10.1)
	assert.Equal(t, CodeInvalidWeight, CodeOf(err))
}

func TestPackingAutoAdvance(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)
	_, err := e.Approve(ctx, req.RequestID)
	require.NoError(t, err)
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	// Checklist complete but no weight yet: stays in PREPARING.
	for _, item := range req.Items {
		out, err := e.RecordPackingCheck(ctx, req.RequestID, "VND-001", item.Name, true)
		require.NoError(t, err)
		assert.Equal(t, string(StatusPreparing), out.Status)
	}

	out, err := e.RecordWeight(ctx, req.RequestID, "VND-001", 9.8)
	require.NoError(t, err)
	assert.Equal(t, string(StatusReadyForPickup), out.Status)
}

func TestPackingAutoAdvanceWeightFirst(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)
	_, err := e.Approve(ctx, req.RequestID)
	require.NoError(t, err)
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	out, err := e.RecordWeight(ctx, req.RequestID, "VND-001", 9.8)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPreparing), out.Status)

	// Unchecking keeps it parked even with weight in place.
	out, err = e.RecordPackingCheck(ctx, req.RequestID, "VND-001", "Tomato", true)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPreparing), out.Status)
	out, err = e.RecordPackingCheck(ctx, req.RequestID, "VND-001", "Tomato", false)
	require.NoError(t, err)
	assert.Equal(t, string(StatusPreparing), out.Status)

	for _, name := range []string{"Tomato", "Onion"} {
		out, err = e.RecordPackingCheck(ctx, req.RequestID, "VND-001", name, true)
		require.NoError(t, err)
	}
	assert.Equal(t, string(StatusReadyForPickup), out.Status)
}

func TestRecordReceiptValidation(t *testing.T) {
	e, ledger := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)
	_, err := e.Dispatch(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	cases := []struct {
		name  string
		lines []ReceiptLine
	}{
		{"unknown item", []ReceiptLine{
			{Name: "Tomato", ReceivedQuantity: 10},
			{Name: "Onion", ReceivedQuantity: 5},
			{Name: "Garlic", ReceivedQuantity: 1},
		}},
		{"duplicate line", []ReceiptLine{
			{Name: "Tomato", ReceivedQuantity: 5},
			{Name: "Tomato", ReceivedQuantity: 5},
			{Name: "Onion", ReceivedQuantity: 5},
		}},
		{"missing line", []ReceiptLine{
			{Name: "Tomato", ReceivedQuantity: 10},
		}},
		{"negative received", []ReceiptLine{
			{Name: "Tomato", ReceivedQuantity: -1},
			{Name: "Onion", ReceivedQuantity: 5},
		}},
		{"damaged exceeds received", []ReceiptLine{
			{Name: "Tomato", ReceivedQuantity: 4, DamagedQuantity: 5},
			{Name: "Onion", ReceivedQuantity: 5},
		}},
		{"received exceeds requested", []ReceiptLine{
			{Name: "Tomato", ReceivedQuantity: 11},
			{Name: "Onion", ReceivedQuantity: 5},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.RecordReceipt(ctx, req.RequestID, "FR-001", tc.lines)
			assert.Equal(t, CodeInvalidReceiptQuantity, CodeOf(err))
		})
	}

	// No partial mutation after any failed receipt.
	stored, err := ledger.Get(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Nil(t, stored.Settlement)
	for _, item := range stored.Items {
		assert.Zero(t, item.ReceivedQuantity)
		assert.Zero(t, item.DamagedQuantity)
	}
}

func TestRecordReceiptRequiresDispatch(t *testing.T) {
	e, _ := newTestEngine()
	req := readyRequest(t, e, 9.8)

	_, err := e.RecordReceipt(context.Background(), req.RequestID, "FR-001", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 10},
		{Name: "Onion", ReceivedQuantity: 5},
	})
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestFullLifecycleSettlement(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	req, err := e.CreateRequest(ctx, "FR-001", "user-1", []NewItem{{Name: "Tomato", Unit: "kg", Quantity: 10}})
	require.NoError(t, err)
	_, err = e.SubmitQuotation(ctx, req.RequestID, "VND-001", []QuoteItem{{Name: "Tomato", QuotedPrice: 20}})
	require.NoError(t, err)
	_, err = e.Approve(ctx, req.RequestID)
	require.NoError(t, err)
	_, err = e.BeginPacking(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)
	_, err = e.RecordPackingCheck(ctx, req.RequestID, "VND-001", "Tomato", true)
	require.NoError(t, err)
	_, err = e.RecordWeight(ctx, req.RequestID, "VND-001", 9.8)
	require.NoError(t, err)
	_, err = e.Dispatch(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	out, err := e.RecordReceipt(ctx, req.RequestID, "FR-001", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 9, DamagedQuantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, out.TotalQuotedAmount)
	assert.Equal(t, 9.8, out.ActualWeight)
	require.NotNil(t, out.Settlement)
	assert.Equal(t, 180.0, out.Settlement.ReceivedValue)
	assert.Equal(t, 20.0, out.Settlement.DamagedLoss)
	assert.Equal(t, 180.0, out.Settlement.NetSettlement)
	assert.True(t, out.Settlement.Discrepancy)

	// Receipts are recorded once.
	_, err = e.RecordReceipt(ctx, req.RequestID, "FR-001", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 10},
	})
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestRecordReceiptNoDiscrepancy(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)
	_, err := e.Dispatch(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	out, err := e.RecordReceipt(ctx, req.RequestID, "FR-001", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 10},
		{Name: "Onion", ReceivedQuantity: 5},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Settlement)
	assert.False(t, out.Settlement.Discrepancy)
	assert.Equal(t, out.TotalQuotedAmount, out.Settlement.ReceivedValue)
	assert.Equal(t, out.TotalQuotedAmount, out.Settlement.NetSettlement)
	assert.Zero(t, out.Settlement.DamagedLoss)
}

func TestRecordReceiptFranchiseScoping(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)
	_, err := e.Dispatch(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	_, err = e.RecordReceipt(ctx, req.RequestID, "FR-002", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 10},
		{Name: "Onion", ReceivedQuantity: 5},
	})
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestListRequestsFilters(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	a := createRequest(t, e)
	b := createRequest(t, e)
	quoteAll(t, e, b, 20)
	done := readyRequest(t, e, 5)
	_, err := e.Dispatch(ctx, done.RequestID, "VND-001")
	require.NoError(t, err)

	all, err := e.ListRequests(ctx, Filter{FranchiseID: "FR-001"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := e.ListRequests(ctx, Filter{VendorID: "VND-001", ExcludeTerminal: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, b.RequestID, open[0].RequestID)

	requested, err := e.ListRequests(ctx, Filter{Statuses: []Status{StatusRequested}})
	require.NoError(t, err)
	require.Len(t, requested, 1)
	assert.Equal(t, a.RequestID, requested[0].RequestID)
}
