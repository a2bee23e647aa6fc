package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/config"
	"procure-dispatch-api-server/internal/auth"
	"procure-dispatch-api-server/internal/models"
)

type UserHandler struct {
	DB  *mongo.Database
	Cfg config.Config
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a JWT carrying role and actor scope.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"email": req.Email}).Decode(&user)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
		return
	}

	expiration, err := time.ParseDuration(h.Cfg.JWT.Expiration)
	if err != nil {
		expiration = 24 * time.Hour
	}
	token, err := auth.GenerateJWT([]byte(h.Cfg.JWT.Secret), expiration, auth.JWTClaims{
		Email:       user.Email,
		Role:        user.Role,
		ActorID:     user.ActorID,
		FranchiseID: user.FranchiseID,
		VendorID:    user.VendorID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role, "actorID": user.ActorID})
}

type CreateUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required,min=8"`
	Role        string `json:"role" binding:"required,oneof=admin franchise vendor delivery_partner"`
	FranchiseID string `json:"franchiseID"`
	VendorID    string `json:"vendorID"`
}

// CreateUser provisions an actor account. Admin only.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Role == "franchise" && req.FranchiseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "franchiseID is required for franchise users"})
		return
	}
	if req.Role == "vendor" && req.VendorID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendorID is required for vendor users"})
		return
	}

	userCollection := h.DB.Collection("users")
	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	newUser := models.User{
		Email:       req.Email,
		Name:        req.Name,
		Password:    hashedPassword,
		Role:        req.Role,
		ActorID:     fmt.Sprintf("%s-%s", req.Role, uuid.New().String()[:8]),
		FranchiseID: req.FranchiseID,
		VendorID:    req.VendorID,
		Status:      "active",
	}

	if _, err := userCollection.InsertOne(context.Background(), newUser); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"actorID": newUser.ActorID,
		"email":   newUser.Email,
	})
}
