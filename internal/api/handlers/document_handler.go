package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"procure-dispatch-api-server/internal/models"
	"procure-dispatch-api-server/internal/procurement"
	"procure-dispatch-api-server/internal/s3"
)

// DocumentHandler generates and serves DC / GRN / Invoice / Bilty snapshots.
// Generation is idempotent per document type; ?force=true mints a successor
// snapshot with a fresh sequence number.
type DocumentHandler struct {
	Engine   *procurement.Engine
	Uploader *s3.Uploader
}

func (h *DocumentHandler) GenerateChallan(c *gin.Context) {
	doc, err := h.Engine.GenerateDeliveryChallan(context.Background(), c.Param("id"), c.Query("force") == "true")
	if err != nil {
		respondEngineError(c, err)
		return
	}
	h.archive(doc)
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) GenerateGRN(c *gin.Context) {
	doc, err := h.Engine.GenerateGRN(context.Background(), c.Param("id"), c.Query("force") == "true")
	if err != nil {
		respondEngineError(c, err)
		return
	}
	h.archive(doc)
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) GenerateInvoice(c *gin.Context) {
	doc, err := h.Engine.GenerateInvoice(context.Background(), c.Param("id"), c.Query("force") == "true")
	if err != nil {
		respondEngineError(c, err)
		return
	}
	h.archive(doc)
	c.JSON(http.StatusCreated, doc)
}

type GenerateBiltyPayload struct {
	NumberOfPackages int    `json:"numberOfPackages" binding:"required,gt=0"`
	DeliveryPartner  string `json:"deliveryPartner" binding:"required"`
	VehicleNumber    string `json:"vehicleNumber" binding:"required"`
	VehicleType      string `json:"vehicleType" binding:"required"`
}

func (h *DocumentHandler) GenerateBilty(c *gin.Context) {
	var payload GenerateBiltyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.Engine.GenerateBilty(context.Background(), c.Param("id"), procurement.BiltyInput{
		NumberOfPackages: payload.NumberOfPackages,
		DeliveryPartner:  payload.DeliveryPartner,
		VehicleNumber:    payload.VehicleNumber,
		VehicleType:      payload.VehicleType,
	}, c.Query("force") == "true")
	if err != nil {
		respondEngineError(c, err)
		return
	}
	h.archive(doc)
	c.JSON(http.StatusCreated, doc)
}

// GetDocument serves an already generated document of the given type.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	req, err := h.Engine.GetRequest(context.Background(), c.Param("id"))
	if err != nil {
		respondEngineError(c, err)
		return
	}

	var doc *models.Document
	switch c.Param("docType") {
	case "challan":
		doc = req.DeliveryChallan
	case "grn":
		doc = req.GRN
	case "invoice":
		doc = req.Invoice
	case "bilty":
		doc = req.Bilty
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown document type"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document has not been generated"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

// archive pushes the snapshot to the document store. Best-effort: the ledger
// copy stays authoritative, a failed upload must never fail the API call.
func (h *DocumentHandler) archive(doc *models.Document) {
	if h.Uploader == nil {
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		log.Printf("CRITICAL: Failed to marshal document %s for archival: %v", doc.DocID, err)
		return
	}
	key := fmt.Sprintf("documents/%s/%s.json", doc.RequestID, doc.DocID)
	if _, err := h.Uploader.Upload(context.Background(), bytes.NewReader(payload), key, "application/json"); err != nil {
		log.Printf("CRITICAL: Failed to archive document %s: %v", doc.DocID, err)
	}
}
