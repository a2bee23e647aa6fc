// server/internal/api/handlers/franchise_handler.go
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
)

type FranchiseHandler struct {
	DB *mongo.Database
}

type AddressRequest struct {
	FullText string `json:"fullText" binding:"required"`
	City     string `json:"city"`
	Pincode  string `json:"pincode"`
}

type CreateFranchiseRequest struct {
	FranchiseID string         `json:"franchiseID" binding:"required"`
	Name        string         `json:"name" binding:"required"`
	OwnerName   string         `json:"ownerName" binding:"required"`
	Address     AddressRequest `json:"address" binding:"required"`
}

// CreateFranchise registers a new franchise node.
func (h *FranchiseHandler) CreateFranchise(c *gin.Context) {
	var req CreateFranchiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("franchises")

	count, err := collection.CountDocuments(context.Background(), bson.M{"franchiseID": req.FranchiseID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for franchise"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Franchise with this ID already exists"})
		return
	}

	newFranchise := models.Franchise{
		FranchiseID: req.FranchiseID,
		Name:        req.Name,
		OwnerName:   req.OwnerName,
		Address: models.Address{
			FullText: req.Address.FullText,
			City:     req.Address.City,
			Pincode:  req.Address.Pincode,
		},
		Status:    "ACTIVE",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newFranchise)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create franchise"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newFranchise.ID = oid
	}

	c.JSON(http.StatusCreated, newFranchise)
}

// GetAllFranchises lists every franchise node.
func (h *FranchiseHandler) GetAllFranchises(c *gin.Context) {
	collection := h.DB.Collection("franchises")

	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query franchises"})
		return
	}
	defer cursor.Close(context.Background())

	var franchises []models.Franchise
	if err = cursor.All(context.Background(), &franchises); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode franchises"})
		return
	}
	if franchises == nil {
		franchises = []models.Franchise{}
	}
	c.JSON(http.StatusOK, franchises)
}

// GetFranchiseByID looks up one franchise node.
func (h *FranchiseHandler) GetFranchiseByID(c *gin.Context) {
	franchiseID := c.Param("id")

	var franchise models.Franchise
	err := h.DB.Collection("franchises").FindOne(context.Background(), bson.M{"franchiseID": franchiseID}).Decode(&franchise)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Franchise not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve franchise"})
		}
		return
	}
	c.JSON(http.StatusOK, franchise)
}

// UpdateFranchise updates a franchise node's details.
func (h *FranchiseHandler) UpdateFranchise(c *gin.Context) {
	franchiseID := c.Param("id")

	var req CreateFranchiseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Collection("franchises").UpdateOne(context.Background(), bson.M{"franchiseID": franchiseID}, bson.M{"$set": bson.M{
		"name":      req.Name,
		"ownerName": req.OwnerName,
		"address": models.Address{
			FullText: req.Address.FullText,
			City:     req.Address.City,
			Pincode:  req.Address.Pincode,
		},
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update franchise"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Franchise updated successfully"})
}

// DeactivateFranchise marks a node INACTIVE. Requests reference franchises
// forever, so nodes are never physically deleted.
func (h *FranchiseHandler) DeactivateFranchise(c *gin.Context) {
	franchiseID := c.Param("id")

	_, err := h.DB.Collection("franchises").UpdateOne(context.Background(), bson.M{"franchiseID": franchiseID}, bson.M{"$set": bson.M{
		"status":    "INACTIVE",
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate franchise"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Franchise deactivated successfully"})
}
