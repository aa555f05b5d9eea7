package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       string

	// Service URLs (Dynamic based on environment)
	APIGatewayURL          string
	SubscriptionServiceURL string
	CoreServiceURL         string

	// Gateway rate limiting
	RateLimitMaxRequests   int
	RateLimitWindowSeconds int
	RateLimitBlockMinutes  int

	// Seeded role names
	RoleAdmin string
	RoleUser  string

	// Permission document cache
	PermissionCacheEnabled bool

	// Logging
	LogLevel string
}

var cfg *Config

// LoadConfig loads configuration from environment variables
func LoadConfig() {
	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("✅ Environment loaded from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg = &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "entitlement"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),

		// Service URLs - Environment-based configuration
		APIGatewayURL:          getEnv("API_GATEWAY_URL", "http://localhost:8000"),
		SubscriptionServiceURL: getEnv("SUBSCRIPTION_SERVICE_URL", "http://localhost:8001"),
		CoreServiceURL:         getEnv("CORE_SERVICE_URL", "http://localhost:8002"),

		// Gateway rate limiting
		RateLimitMaxRequests:   getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
		RateLimitWindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitBlockMinutes:  getEnvAsInt("RATE_LIMIT_BLOCK_MINUTES", 5),

		// Seeded role names
		RoleAdmin: getEnv("ROLE_ADMIN", "ADMIN"),
		RoleUser:  getEnv("ROLE_USER", "USER"),

		// Permission document cache
		PermissionCacheEnabled: getEnvAsBool("PERMISSION_CACHE_ENABLED", true),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	log.Println("✅ Configuration loaded successfully")
}

// GetConfig returns the current configuration
func GetConfig() *Config {
	if cfg == nil {
		LoadConfig()
	}
	return cfg
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvAsInt gets environment variable as integer with fallback
func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvAsBool gets environment variable as boolean with fallback
func getEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
