// server/internal/api/routes/routes.go
package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"procure-dispatch-api-server/config"
	"procure-dispatch-api-server/internal/api/handlers"
	"procure-dispatch-api-server/internal/api/middleware"
	"procure-dispatch-api-server/internal/procurement"
	"procure-dispatch-api-server/internal/s3"
	"procure-dispatch-api-server/internal/socket"
)

// SetupRouter wires the handlers and route groups.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	engine *procurement.Engine,
	aggregator *procurement.Aggregator,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
		corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
		router.Use(cors.New(corsConfig))
	}

	jwtSecret := []byte(cfg.JWT.Secret)

	requestHandler := &handlers.RequestHandler{Engine: engine, DB: db, Hub: wsHub}
	vendorHandler := &handlers.VendorHandler{Engine: engine, Hub: wsHub}
	documentHandler := &handlers.DocumentHandler{Engine: engine, Uploader: s3Uploader}
	adminHandler := &handlers.AdminHandler{Engine: engine, Aggregator: aggregator, DB: db, Hub: wsHub}
	franchiseHandler := &handlers.FranchiseHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWTSecret: jwtSecret}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Admin-only management and audit routes.
		admin := apiV1.Group("/")
		admin.Use(middleware.Authenticate(jwtSecret))
		admin.Use(middleware.Authorize("admin"))
		{
			admin.POST("/admin/users", userHandler.CreateUser)

			franchises := admin.Group("/admin/franchises")
			{
				franchises.POST("/", franchiseHandler.CreateFranchise)
				franchises.GET("/", franchiseHandler.GetAllFranchises)
				franchises.GET("/:id", franchiseHandler.GetFranchiseByID)
				franchises.PUT("/:id", franchiseHandler.UpdateFranchise)
				franchises.DELETE("/:id", franchiseHandler.DeactivateFranchise)
			}

			vendors := admin.Group("/admin/vendors")
			{
				vendors.POST("/", adminHandler.CreateVendor)
				vendors.GET("/", adminHandler.GetAllVendors)
			}

			admin.GET("/procurement/admin/reports", adminHandler.GetReports)
			admin.GET("/procurement/admin/requests", adminHandler.GetAllRequests)
			admin.POST("/procurement/requests/:id/cancel", adminHandler.CancelRequest)
		}

		// Core lifecycle routes, scoped per actor role.
		business := apiV1.Group("/procurement")
		business.Use(middleware.Authenticate(jwtSecret))
		{
			franchiseRoutes := business.Group("/requests")
			franchiseRoutes.Use(middleware.Authorize("franchise", "admin"))
			{
				franchiseRoutes.POST("/", requestHandler.CreateRequest)
				franchiseRoutes.GET("/my", requestHandler.GetMyRequests)
				franchiseRoutes.POST("/:id/approve", requestHandler.Approve)
				franchiseRoutes.POST("/:id/reject", requestHandler.Reject)
				franchiseRoutes.POST("/:id/receipt", requestHandler.RecordReceipt)
				franchiseRoutes.POST("/:id/documents/grn", documentHandler.GenerateGRN)
			}

			vendorRoutes := business.Group("/vendor")
			vendorRoutes.Use(middleware.Authorize("vendor", "admin"))
			{
				vendorRoutes.POST("/:id/quote", vendorHandler.SubmitQuotation)
				vendorRoutes.GET("/active-dispatch", vendorHandler.GetActiveDispatch)
				vendorRoutes.GET("/my-assignments", vendorHandler.GetMyAssignments)
			}

			fulfillmentRoutes := business.Group("/requests")
			fulfillmentRoutes.Use(middleware.Authorize("vendor", "admin"))
			{
				fulfillmentRoutes.POST("/:id/packing/begin", vendorHandler.BeginPacking)
				fulfillmentRoutes.POST("/:id/packing/check", vendorHandler.RecordPackingCheck)
				fulfillmentRoutes.POST("/:id/weight", vendorHandler.RecordWeight)
				fulfillmentRoutes.POST("/:id/dispatch", vendorHandler.Dispatch)
				fulfillmentRoutes.POST("/:id/documents/challan", documentHandler.GenerateChallan)
				fulfillmentRoutes.POST("/:id/documents/invoice", documentHandler.GenerateInvoice)
				fulfillmentRoutes.POST("/:id/documents/bilty", documentHandler.GenerateBilty)
			}

			sharedRoutes := business.Group("/requests")
			sharedRoutes.Use(middleware.Authorize("franchise", "vendor", "delivery_partner", "admin"))
			{
				sharedRoutes.GET("/:id", requestHandler.GetRequestByID)
				sharedRoutes.GET("/:id/documents/:docType", documentHandler.GetDocument)
			}
		}
	}

	return router
}
