package routes

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/config"
)

// getServiceURLs returns service URLs from configuration
func getServiceURLs() map[string]string {
	cfg := config.GetConfig()
	return map[string]string{
		"subscription": cfg.SubscriptionServiceURL,
		"core":         cfg.CoreServiceURL,
	}
}

// ProxyToService handles requests and proxies them to the appropriate service
func ProxyToService(serviceName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// Get service URLs
		serviceURLs := getServiceURLs()

		// Service URL lookup
		serviceURL, exists := serviceURLs[serviceName]
		if !exists {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Service not found", "service": serviceName})
			return
		}
		// Parse the service URL
		target, err := url.Parse(serviceURL)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid service URL", "service": serviceName})
			return
		}

		// Create a reverse proxy
		proxy := httputil.NewSingleHostReverseProxy(target)

		// add request to proxy
		proxy.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
