package procurement

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procure-dispatch-api-server/internal/models"
)

func TestDeliveryChallanIdempotent(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)

	first, err := e.GenerateDeliveryChallan(ctx, req.RequestID, false)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("DC-%s-1", req.RequestID), first.DocID)
	assert.Equal(t, 9.8, first.TotalWeight)
	assert.Equal(t, req.TotalQuotedAmount, first.TotalAmount)
	assert.Equal(t, "Indiranagar Outlet", first.Franchise)
	assert.Equal(t, "Fresh Farms Supply", first.Vendor)

	// Plain regeneration returns the stored snapshot.
	again, err := e.GenerateDeliveryChallan(ctx, req.RequestID, false)
	require.NoError(t, err)
	assert.Equal(t, first.DocID, again.DocID)
	assert.Equal(t, first.GeneratedAt, again.GeneratedAt)

	forced, err := e.GenerateDeliveryChallan(ctx, req.RequestID, true)
	require.NoError(t, err)
	assert.Equal(t, 2, forced.Sequence)
	assert.NotEqual(t, first.DocID, forced.DocID)

	// Sequence counters persist so ids are never reused.
	forced, err = e.GenerateDeliveryChallan(ctx, req.RequestID, true)
	require.NoError(t, err)
	assert.Equal(t, 3, forced.Sequence)
}

func TestDeliveryChallanPreconditions(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)

	_, err := e.GenerateDeliveryChallan(ctx, req.RequestID, false)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
}

func TestInvoiceGeneration(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := createRequest(t, e)
	quoteAll(t, e, req, 20)

	_, err := e.GenerateInvoice(ctx, req.RequestID, false)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	_, err = e.Approve(ctx, req.RequestID)
	require.NoError(t, err)

	inv, err := e.GenerateInvoice(ctx, req.RequestID, false)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("INV-%s-1", req.RequestID), inv.InvoiceNumber)
	assert.False(t, inv.InvoiceDate.IsZero())
	assert.Equal(t, req.TotalQuotedAmount, inv.TotalAmount)
}

func TestGRNRequiresReceipt(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)
	_, err := e.Dispatch(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)

	_, err = e.GenerateGRN(ctx, req.RequestID, false)
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))

	out, err := e.RecordReceipt(ctx, req.RequestID, "FR-001", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 9, DamagedQuantity: 1},
		{Name: "Onion", ReceivedQuantity: 5},
	})
	require.NoError(t, err)

	grn, err := e.GenerateGRN(ctx, req.RequestID, false)
	require.NoError(t, err)
	assert.Equal(t, out.Settlement.NetSettlement, grn.TotalAmount)

	byName := make(map[string]models.DocumentItem)
	for _, item := range grn.Items {
		byName[item.Name] = item
	}
	assert.Equal(t, 9.0, byName["Tomato"].ReceivedQuantity)
	assert.Equal(t, 1.0, byName["Tomato"].DamagedQuantity)
	assert.Equal(t, 5.0, byName["Onion"].ReceivedQuantity)
}

func TestBiltyGeneration(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)

	bilty, err := e.GenerateBilty(ctx, req.RequestID, BiltyInput{
		NumberOfPackages: 4,
		DeliveryPartner:  "Sharma Logistics",
		VehicleNumber:    "KA-01-AB-1234",
		VehicleType:      "Refrigerated Van",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("BLT-%s-1", req.RequestID), bilty.BiltyNumber)
	assert.Equal(t, 4, bilty.NumberOfPackages)
	assert.Equal(t, "Sharma Logistics", bilty.DeliveryPartner)
	assert.Equal(t, "KA-01-AB-1234", bilty.VehicleNumber)
	assert.Equal(t, 9.8, bilty.TotalWeight)
}

func TestDocumentSnapshotImmutable(t *testing.T) {
	e, ledger := newTestEngine()
	ctx := context.Background()
	req := readyRequest(t, e, 9.8)

	challan, err := e.GenerateDeliveryChallan(ctx, req.RequestID, false)
	require.NoError(t, err)

	_, err = e.Dispatch(ctx, req.RequestID, "VND-001")
	require.NoError(t, err)
	_, err = e.RecordReceipt(ctx, req.RequestID, "FR-001", []ReceiptLine{
		{Name: "Tomato", ReceivedQuantity: 9, DamagedQuantity: 1},
		{Name: "Onion", ReceivedQuantity: 5},
	})
	require.NoError(t, err)

	// The stored challan still shows the state at dispatch time.
	stored, err := ledger.Get(ctx, req.RequestID)
	require.NoError(t, err)
	require.NotNil(t, stored.DeliveryChallan)
	assert.Equal(t, challan.DocID, stored.DeliveryChallan.DocID)
	for _, item := range stored.DeliveryChallan.Items {
		assert.Zero(t, item.ReceivedQuantity)
		assert.Zero(t, item.DamagedQuantity)
	}
}
