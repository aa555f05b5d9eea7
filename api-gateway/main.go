package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"entitlement-backend/api-gateway/middleware"
	"entitlement-backend/api-gateway/routes"
	"entitlement-backend/shared/config"
	sharedmiddleware "entitlement-backend/shared/middleware"

	_ "entitlement-backend/docs"
)

// @title Entitlement Backend API
// @version 1.0
// @description API documentation for the entitlement backend services

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name subscriptions
// @tag.description Subscription management operations

// @tag.name services
// @tag.description Service catalog operations

// @tag.name api-permissions
// @tag.description API permission catalog operations

// @tag.name page-permissions
// @tag.description Page permission catalog operations

// @tag.name users
// @tag.description User management operations

// @tag.name roles
// @tag.description Role management operations

// @tag.name permissions
// @tag.description Permission record operations

func main() {
	// Load configuration
	config.LoadConfig()

	// Initialize global rate limiter
	rateLimiter := middleware.NewRateLimiter(5 * time.Minute) // Cleanup every 5 minutes

	// Global rate limit configuration from environment variables
	globalRateConfig := middleware.NewRateLimitConfig()

	router := gin.Default()

	// Add CORS middleware
	router.Use(cors.Default())

	// Global rate limiter middleware
	router.Use(rateLimiter.GlobalRateLimitMiddleware(globalRateConfig))

	// Tag every request before it is proxied downstream
	router.Use(sharedmiddleware.RequestID())

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "API Gateway is running"})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Subscription service routes
	router.Any("/api/subscriptions", routes.ProxyToService("subscription"))
	router.Any("/api/subscriptions/*path", routes.ProxyToService("subscription"))
	router.Any("/api/services", routes.ProxyToService("subscription"))
	router.Any("/api/services/*path", routes.ProxyToService("subscription"))
	router.Any("/api/api-permissions", routes.ProxyToService("subscription"))
	router.Any("/api/api-permissions/*path", routes.ProxyToService("subscription"))
	router.Any("/api/page-permissions", routes.ProxyToService("subscription"))
	router.Any("/api/page-permissions/*path", routes.ProxyToService("subscription"))

	// Core service routes
	router.Any("/api/users", routes.ProxyToService("core"))
	router.Any("/api/users/*path", routes.ProxyToService("core"))
	router.Any("/api/roles", routes.ProxyToService("core"))
	router.Any("/api/roles/*path", routes.ProxyToService("core"))
	router.Any("/api/permissions", routes.ProxyToService("core"))
	router.Any("/api/permissions/*path", routes.ProxyToService("core"))

	// Server Start
	port := strings.Split(config.GetConfig().APIGatewayURL, ":")[2]
	log.Printf("API Gateway is running on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
