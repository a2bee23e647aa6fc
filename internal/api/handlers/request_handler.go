package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/internal/models"
	"procure-dispatch-api-server/internal/procurement"
	"procure-dispatch-api-server/internal/socket"
)

// RequestHandler serves the franchise side of the lifecycle: opening
// requests, approving or rejecting quotations, recording receipt.
type RequestHandler struct {
	Engine *procurement.Engine
	DB     *mongo.Database
	Hub    *socket.Hub
}

type RequestItemPayload struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Unit     string  `json:"unit" binding:"required"`
}

type CreateRequestPayload struct {
	Items []RequestItemPayload `json:"items" binding:"required,min=1,dive"`
}

// CreateRequest opens a new procurement request for the caller's franchise.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actorID := c.GetString("user_actor_id")
	franchiseID := c.GetString("user_franchise_id")

	// The franchise node must exist before anything can be requested for it.
	count, err := h.DB.Collection("franchises").CountDocuments(context.Background(), bson.M{"franchiseID": franchiseID})
	if err != nil || count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Originating franchise does not exist."})
		return
	}

	var payload CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]procurement.NewItem, len(payload.Items))
	for i, it := range payload.Items {
		items[i] = procurement.NewItem{Name: it.Name, Unit: it.Unit, Quantity: it.Quantity}
	}

	req, err := h.Engine.CreateRequest(context.Background(), franchiseID, actorID, items)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, req)
}

// GetMyRequests lists the caller franchise's requests, optionally filtered
// by status. Alias labels from older clients (assigned, bidding, new) are
// normalized here, at the boundary.
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	franchiseID := c.GetString("user_franchise_id")

	filter := procurement.Filter{FranchiseID: franchiseID}
	if raw := c.Query("status"); raw != "" {
		status, ok := procurement.ParseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + raw})
			return
		}
		filter.Statuses = []procurement.Status{status}
	}

	requests, err := h.Engine.ListRequests(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query procurement requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetRequestByID returns one request to any actor involved in it.
func (h *RequestHandler) GetRequestByID(c *gin.Context) {
	req, ok := h.visibleRequest(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, req)
}

// Approve authorizes a quoted request.
func (h *RequestHandler) Approve(c *gin.Context) {
	requestID := c.Param("id")
	if !h.ownsRequest(c, requestID) {
		return
	}

	req, err := h.Engine.Approve(context.Background(), requestID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	h.Hub.Notify(req.VendorID, socket.Event{Event: "procurement_approved", RequestID: req.RequestID, Status: req.Status})
	c.JSON(http.StatusOK, req)
}

// Reject turns down a request before fulfillment begins.
func (h *RequestHandler) Reject(c *gin.Context) {
	requestID := c.Param("id")
	if !h.ownsRequest(c, requestID) {
		return
	}

	req, err := h.Engine.Reject(context.Background(), requestID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	h.Hub.Notify(req.VendorID, socket.Event{Event: "procurement_rejected", RequestID: req.RequestID, Status: req.Status})
	c.JSON(http.StatusOK, req)
}

type ReceiptItemPayload struct {
	Name             string  `json:"name" binding:"required"`
	ReceivedQuantity float64 `json:"receivedQuantity" binding:"min=0"`
	DamagedQuantity  float64 `json:"damagedQuantity" binding:"min=0"`
}

type RecordReceiptPayload struct {
	Items []ReceiptItemPayload `json:"items" binding:"required,min=1,dive"`
}

// RecordReceipt stores what actually arrived and derives the settlement.
func (h *RequestHandler) RecordReceipt(c *gin.Context) {
	requestID := c.Param("id")
	franchiseID := c.GetString("user_franchise_id")

	var payload RecordReceiptPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := make([]procurement.ReceiptLine, len(payload.Items))
	for i, it := range payload.Items {
		lines[i] = procurement.ReceiptLine{
			Name:             it.Name,
			ReceivedQuantity: it.ReceivedQuantity,
			DamagedQuantity:  it.DamagedQuantity,
		}
	}

	req, err := h.Engine.RecordReceipt(context.Background(), requestID, franchiseID, lines)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	h.Hub.Notify(req.VendorID, socket.Event{Event: "procurement_receipt", RequestID: req.RequestID, Status: req.Status})
	c.JSON(http.StatusOK, req)
}

// ownsRequest lets the owning franchise and admins through; everyone else
// sees 404/403.
func (h *RequestHandler) ownsRequest(c *gin.Context, requestID string) bool {
	role := c.GetString("user_role")
	if role == "admin" {
		return true
	}
	req, err := h.Engine.GetRequest(context.Background(), requestID)
	if err != nil {
		respondEngineError(c, err)
		return false
	}
	if req.FranchiseID != c.GetString("user_franchise_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not the owner of this request"})
		return false
	}
	return true
}

// visibleRequest fetches the request and checks the caller is one of its
// actors (owning franchise, assigned vendor, or admin).
func (h *RequestHandler) visibleRequest(c *gin.Context) (*models.ProcurementRequest, bool) {
	requestID := c.Param("id")
	req, err := h.Engine.GetRequest(context.Background(), requestID)
	if err != nil {
		respondEngineError(c, err)
		return nil, false
	}

	switch c.GetString("user_role") {
	case "admin", "delivery_partner":
		return req, true
	case "franchise":
		if req.FranchiseID == c.GetString("user_franchise_id") {
			return req, true
		}
	case "vendor":
		if req.VendorID == c.GetString("user_vendor_id") {
			return req, true
		}
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "You do not have access to this request"})
	return nil, false
}
