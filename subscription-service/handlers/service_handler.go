package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/database"
	"entitlement-backend/subscription-service/services"
)

// GetServices retrieves all services
// @Summary Get all services
// @Tags services
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /services [get]
func GetServices(ctx *gin.Context) {
	svc := services.NewCatalogService(database.DB)

	svcs, err := svc.ListServices(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    svcs,
	})
}

// GetService retrieves a single service by ID
// @Summary Get service by ID
// @Tags services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /services/{id} [get]
func GetService(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewCatalogService(database.DB)
	result, err := svc.GetService(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetServiceApiPermissions retrieves the API permissions linked to a service
// @Summary Get API permissions by service
// @Tags services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /services/{id}/api-permissions [get]
func GetServiceApiPermissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewCatalogService(database.DB)
	result, err := svc.ListApiPermissionsByService(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// CreateService creates a new service
// @Summary Create a new service
// @Description Create a service, optionally linking it to a subscription and API permissions
// @Tags services
// @Accept json
// @Produce json
// @Param service body services.CreateServiceRequest true "Service information"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Referenced subscription or permissions not found"
// @Failure 409 {object} map[string]string "Service name already exists"
// @Router /services [post]
func CreateService(ctx *gin.Context) {
	var req services.CreateServiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewCatalogService(database.DB)
	result, err := svc.CreateService(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Service created successfully",
		"data":    result,
	})
}

// UpdateService updates an existing service
// @Summary Update a service
// @Tags services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param service body services.UpdateServiceRequest true "Updated service information"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /services/{id} [put]
func UpdateService(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateServiceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewCatalogService(database.DB)
	result, err := svc.UpdateService(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Service updated successfully",
		"data":    result,
	})
}

// LinkApiPermissions links API permissions to a service
// @Summary Link API permissions to a service
// @Description Attach existing API permissions; already linked ids are skipped
// @Tags services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param request body services.LinkRequest true "API permission ids to link"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Service or permissions not found"
// @Router /services/{id}/api-permissions [post]
func LinkApiPermissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.LinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewMappingService(database.DB)
	result, err := svc.LinkApiPermissionsToService(ctx.Request.Context(), id, req.IDs)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API permissions linked successfully",
		"data":    result,
	})
}

// LinkPagePermissions links page permissions to a service
// @Summary Link page permissions to a service
// @Description Attach existing page permissions; already linked ids are skipped
// @Tags services
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Param request body services.LinkRequest true "Page permission ids to link"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Service or permissions not found"
// @Router /services/{id}/page-permissions [post]
func LinkPagePermissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.LinkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewMappingService(database.DB)
	result, err := svc.LinkPagePermissionsToService(ctx.Request.Context(), id, req.IDs)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Page permissions linked successfully",
		"data":    result,
	})
}
