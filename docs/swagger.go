// Package docs Entitlement backend API documentation
package docs

// Swagger documentation info
// @title Entitlement Backend API
// @version 1.0
// @description Central API documentation - For all entitlement backend services

// @host localhost:8000
// @BasePath /api
// @schemes http https

// Subscription Service Endpoints
// @tag.name subscriptions
// @tag.description Subscription plan management
// @tag.name services
// @tag.description Service catalog management
// @tag.name api-permissions
// @tag.description API permission catalog management
// @tag.name page-permissions
// @tag.description Page permission catalog management

// Core Service Endpoints
// @tag.name users
// @tag.description User and organization management
// @tag.name roles
// @tag.description Role management
// @tag.name permissions
// @tag.description Permission record management
