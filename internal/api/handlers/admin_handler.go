// server/internal/api/handlers/admin_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/internal/models"
	"procure-dispatch-api-server/internal/procurement"
	"procure-dispatch-api-server/internal/socket"
)

type AdminHandler struct {
	Engine     *procurement.Engine
	Aggregator *procurement.Aggregator
	DB         *mongo.Database
	Hub        *socket.Hub
}

// GetReports serves the audit table. The summary block covers the full
// ledger regardless of filters; totals covers only the filtered rows.
func (h *AdminHandler) GetReports(c *gin.Context) {
	filter := procurement.ReportFilter{
		Search:    c.Query("search"),
		DateRange: c.Query("dateRange"),
	}

	reports, filtered, summary, err := h.Aggregator.ListReports(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"totals":  filtered,
		"reports": reports,
	})
}

// CancelRequest terminates any non-terminal request. Both sides get told.
func (h *AdminHandler) CancelRequest(c *gin.Context) {
	req, err := h.Engine.Cancel(context.Background(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	ev := socket.Event{Event: "procurement_cancelled", RequestID: req.RequestID, Status: req.Status}
	h.Hub.Notify(req.FranchiseID, ev)
	h.Hub.Notify(req.VendorID, ev)
	c.JSON(http.StatusOK, req)
}

// GetAllRequests lists every request, optionally filtered by status (alias
// tolerant).
func (h *AdminHandler) GetAllRequests(c *gin.Context) {
	filter := procurement.Filter{}
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

type CreateVendorRequest struct {
	VendorID  string         `json:"vendorID" binding:"required"`
	Name      string         `json:"name" binding:"required"`
	GSTNumber string         `json:"gstNumber"`
	Address   models.Address `json:"address" binding:"required"`
}

// CreateVendor registers a supplying vendor.
func (h *AdminHandler) CreateVendor(c *gin.Context) {
	var req CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("vendors")
	count, err := collection.CountDocuments(context.Background(), bson.M{"vendorID": req.VendorID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for vendor"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Vendor with this ID already exists"})
		return
	}

	newVendor := models.Vendor{
		VendorID:  req.VendorID,
		Name:      req.Name,
		GSTNumber: req.GSTNumber,
		Address:   req.Address,
		Status:    "ACTIVE",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newVendor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newVendor.ID = oid
	}

	c.JSON(http.StatusCreated, newVendor)
}

// GetAllVendors lists registered vendors.
func (h *AdminHandler) GetAllVendors(c *gin.Context) {
	cursor, err := h.DB.Collection("vendors").Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query vendors"})
		return
	}
	defer cursor.Close(context.Background())

	var vendors []models.Vendor
	if err = cursor.All(context.Background(), &vendors); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode vendors"})
		return
	}
	if vendors == nil {
		vendors = []models.Vendor{}
	}
	c.JSON(http.StatusOK, vendors)
}
