package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/database"
	"entitlement-backend/subscription-service/services"
)

// GetApiPermissions retrieves all API permissions
// @Summary Get all API permissions
// @Tags api-permissions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /api-permissions [get]
func GetApiPermissions(ctx *gin.Context) {
	svc := services.NewPermissionCatalogService(database.DB)

	perms, err := svc.ListApiPermissions(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    perms,
	})
}

// GetApiPermission retrieves a single API permission by ID
// @Summary Get API permission by ID
// @Tags api-permissions
// @Accept json
// @Produce json
// @Param id path int true "API permission ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /api-permissions/{id} [get]
func GetApiPermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	perm, err := svc.GetApiPermission(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    perm,
	})
}

// CreateApiPermission creates a new API permission
// @Summary Create a new API permission
// @Tags api-permissions
// @Accept json
// @Produce json
// @Param permission body services.CreateApiPermissionRequest true "API permission information"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid request data or HTTP method"
// @Failure 409 {object} map[string]string "Permission name already exists"
// @Router /api-permissions [post]
func CreateApiPermission(ctx *gin.Context) {
	var req services.CreateApiPermissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	perm, err := svc.CreateApiPermission(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "API permission created successfully",
		"data":    perm,
	})
}

// UpdateApiPermission updates an existing API permission
// @Summary Update an API permission
// @Tags api-permissions
// @Accept json
// @Produce json
// @Param id path int true "API permission ID"
// @Param permission body services.UpdateApiPermissionRequest true "Updated API permission information"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api-permissions/{id} [put]
func UpdateApiPermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateApiPermissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	perm, err := svc.UpdateApiPermission(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API permission updated successfully",
		"data":    perm,
	})
}

// DeleteApiPermission deletes an API permission and its service links
// @Summary Delete an API permission
// @Description Delete an API permission; service link rows are removed with it
// @Tags api-permissions
// @Accept json
// @Produce json
// @Param id path int true "API permission ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string
// @Router /api-permissions/{id} [delete]
func DeleteApiPermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	if err := svc.DeleteApiPermission(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API permission deleted successfully",
	})
}
