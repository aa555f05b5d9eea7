package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"entitlement-backend/core-service/handlers"
	"entitlement-backend/shared/config"
	"entitlement-backend/shared/database"
	"entitlement-backend/shared/middleware"
	"entitlement-backend/shared/utils/cache"
	"entitlement-backend/shared/utils/logger"
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

	// User routes
	router.POST("/api/users/register", handlers.Register)
	router.GET("/api/users", handlers.GetUsers)
	router.GET("/api/users/:id", handlers.GetUser)
	router.GET("/api/users/by-username/:username", handlers.GetUserByUsername)
	router.POST("/api/users", handlers.CreateUser)
	router.PUT("/api/users/:id", handlers.UpdateUser)
	router.DELETE("/api/users/:id", handlers.DeleteUser)
	router.GET("/api/users/:id/permissions", handlers.GetUserPermissions)

	// Role routes
	router.GET("/api/roles", handlers.GetRoles)
	router.GET("/api/roles/:id", handlers.GetRole)
	router.POST("/api/roles", handlers.CreateRole)
	router.PUT("/api/roles/:id", handlers.UpdateRole)
	router.DELETE("/api/roles/:id", handlers.DeleteRole)
	router.GET("/api/roles/:id/users", handlers.GetUsersByRole)

	// Permission routes
	router.GET("/api/permissions", handlers.GetPermissions)
	router.GET("/api/permissions/:id", handlers.GetPermission)
	router.PUT("/api/permissions/:id", handlers.UpdatePermission)
	router.DELETE("/api/permissions/:id", handlers.DeletePermission)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "core",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Parse port from config URL
	port := strings.Split(config.GetConfig().CoreServiceURL, ":")[2]
	log.Printf("Core Service starting on port %s...", port)
	router.Run(":" + port)
}
