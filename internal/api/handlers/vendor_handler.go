package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"procure-dispatch-api-server/internal/procurement"
	"procure-dispatch-api-server/internal/socket"
)

// VendorHandler serves the vendor side: quoting, packing, weighing,
// dispatching.
type VendorHandler struct {
	Engine *procurement.Engine
	Hub    *socket.Hub
}

type QuoteItemPayload struct {
	Name        string  `json:"name" binding:"required"`
	QuotedPrice float64 `json:"quotedPrice" binding:"required,gt=0"`
}

type SubmitQuotationPayload struct {
	Items []QuoteItemPayload `json:"items" binding:"required,min=1,dive"`
}

// SubmitQuotation prices every line item of a REQUESTED request. Exactly one
// quotation can win; a concurrent competitor gets a 409.
func (h *VendorHandler) SubmitQuotation(c *gin.Context) {
	requestID := c.Param("id")
	vendorID := c.GetString("user_vendor_id")

	var payload SubmitQuotationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quotes := make([]procurement.QuoteItem, len(payload.Items))
	for i, it := range payload.Items {
		quotes[i] = procurement.QuoteItem{Name: it.Name, QuotedPrice: it.QuotedPrice}
	}

	req, err := h.Engine.SubmitQuotation(context.Background(), requestID, vendorID, quotes)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	h.Hub.Notify(req.FranchiseID, socket.Event{Event: "procurement_quoted", RequestID: req.RequestID, Status: req.Status})
	c.JSON(http.StatusOK, req)
}

// GetActiveDispatch lists the caller vendor's in-flight (non-terminal)
// requests.
func (h *VendorHandler) GetActiveDispatch(c *gin.Context) {
	vendorID := c.GetString("user_vendor_id")

	requests, err := h.Engine.ListRequests(context.Background(), procurement.Filter{
		VendorID:        vendorID,
		ExcludeTerminal: true,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query procurement requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetMyAssignments lists everything ever assigned to the caller vendor.
func (h *VendorHandler) GetMyAssignments(c *gin.Context) {
	vendorID := c.GetString("user_vendor_id")

	requests, err := h.Engine.ListRequests(context.Background(), procurement.Filter{VendorID: vendorID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query procurement requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// BeginPacking moves an approved request into PREPARING.
func (h *VendorHandler) BeginPacking(c *gin.Context) {
	req, err := h.Engine.BeginPacking(context.Background(), c.Param("id"), c.GetString("user_vendor_id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

type PackingCheckPayload struct {
	ItemName string `json:"itemName" binding:"required"`
	Checked  *bool  `json:"checked" binding:"required"`
}

// RecordPackingCheck ticks (or unticks) one checklist line. When the
// checklist and weight are both complete the engine advances the status
// itself.
func (h *VendorHandler) RecordPackingCheck(c *gin.Context) {
	var payload PackingCheckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Engine.RecordPackingCheck(context.Background(), c.Param("id"), c.GetString("user_vendor_id"), payload.ItemName, *payload.Checked)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if procurement.Status(req.Status) == procurement.StatusReadyForPickup {
		h.Hub.Notify(req.FranchiseID, socket.Event{Event: "procurement_ready_for_pickup", RequestID: req.RequestID, Status: req.Status})
	}
	c.JSON(http.StatusOK, req)
}

type RecordWeightPayload struct {
	WeightKg float64 `json:"weightKg" binding:"required"`
}

// RecordWeight records the calibrated dispatch weight, once.
func (h *VendorHandler) RecordWeight(c *gin.Context) {
	var payload RecordWeightPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Engine.RecordWeight(context.Background(), c.Param("id"), c.GetString("user_vendor_id"), payload.WeightKg)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	if procurement.Status(req.Status) == procurement.StatusReadyForPickup {
		h.Hub.Notify(req.FranchiseID, socket.Event{Event: "procurement_ready_for_pickup", RequestID: req.RequestID, Status: req.Status})
	}
	c.JSON(http.StatusOK, req)
}

// Dispatch sends the goods out: READY_FOR_PICKUP -> COMPLETED.
func (h *VendorHandler) Dispatch(c *gin.Context) {
	req, err := h.Engine.Dispatch(context.Background(), c.Param("id"), c.GetString("user_vendor_id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	h.Hub.Notify(req.FranchiseID, socket.Event{Event: "procurement_dispatched", RequestID: req.RequestID, Status: req.Status})
	c.JSON(http.StatusOK, req)
}
