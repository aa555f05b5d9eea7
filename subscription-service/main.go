package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"entitlement-backend/shared/config"
	"entitlement-backend/shared/database"
	"entitlement-backend/shared/middleware"
	"entitlement-backend/shared/utils/cache"
	"entitlement-backend/shared/utils/logger"
	"entitlement-backend/subscription-service/handlers"
)

func main() {
	// Load configuration
	config.LoadConfig()
	logger.Init(config.GetConfig().LogLevel)

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Permission document cache is optional; the service keeps working
	// without it.
	if config.GetConfig().PermissionCacheEnabled {
		if err := cache.InitCacheManager(); err != nil {
			log.Printf("Warning: cache manager unavailable: %v", err)
		}
	}

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middleware.RequestID())

	// Subscription routes
	router.GET("/api/subscriptions", handlers.GetSubscriptions)
	router.GET("/api/subscriptions/active", handlers.GetActiveSubscriptions)
	router.GET("/api/subscriptions/:id", handlers.GetSubscription)
	router.POST("/api/subscriptions", handlers.CreateSubscription)
	router.PUT("/api/subscriptions/:id", handlers.UpdateSubscription)
	router.DELETE("/api/subscriptions/:id", handlers.DeleteSubscription)
	router.GET("/api/subscriptions/:id/services", handlers.GetSubscriptionServices)
	router.POST("/api/subscriptions/:id/services", handlers.LinkServices)
	router.DELETE("/api/subscriptions/:id/services/:serviceId", handlers.DeleteSubscriptionService)

	// Service routes
	router.GET("/api/services", handlers.GetServices)
	router.GET("/api/services/:id", handlers.GetService)
	router.POST("/api/services", handlers.CreateService)
	router.PUT("/api/services/:id", handlers.UpdateService)
	router.GET("/api/services/:id/api-permissions", handlers.GetServiceApiPermissions)
	router.POST("/api/services/:id/api-permissions", handlers.LinkApiPermissions)
	router.POST("/api/services/:id/page-permissions", handlers.LinkPagePermissions)

	// API permission routes
	router.GET("/api/api-permissions", handlers.GetApiPermissions)
	router.GET("/api/api-permissions/:id", handlers.GetApiPermission)
	router.POST("/api/api-permissions", handlers.CreateApiPermission)
	router.PUT("/api/api-permissions/:id", handlers.UpdateApiPermission)
	router.DELETE("/api/api-permissions/:id", handlers.DeleteApiPermission)

	// Page permission routes
	router.GET("/api/page-permissions", handlers.GetPagePermissions)
	router.GET("/api/page-permissions/:id", handlers.GetPagePermission)
	router.POST("/api/page-permissions", handlers.CreatePagePermission)
	router.PUT("/api/page-permissions/:id", handlers.UpdatePagePermission)
	router.DELETE("/api/page-permissions/:id", handlers.DeletePagePermission)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "subscription",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().SubscriptionServiceURL, ":")[2]
	log.Printf("Subscription Service starting on port %s...", port)
	router.Run(":" + port)
}
