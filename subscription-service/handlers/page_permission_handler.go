package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/database"
	"entitlement-backend/subscription-service/services"
)

// GetPagePermissions retrieves all page permissions
// @Summary Get all page permissions
// @Tags page-permissions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /page-permissions [get]
func GetPagePermissions(ctx *gin.Context) {
	svc := services.NewPermissionCatalogService(database.DB)

	perms, err := svc.ListPagePermissions(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    perms,
	})
}

// GetPagePermission retrieves a single page permission by ID
// @Summary Get page permission by ID
// @Tags page-permissions
// @Accept json
// @Produce json
// @Param id path int true "Page permission ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /page-permissions/{id} [get]
func GetPagePermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	perm, err := svc.GetPagePermission(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    perm,
	})
}

// CreatePagePermission creates a new page permission
// @Summary Create a new page permission
// @Tags page-permissions
// @Accept json
// @Produce json
// @Param permission body services.CreatePagePermissionRequest true "Page permission information"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Permission name already exists"
// @Router /page-permissions [post]
func CreatePagePermission(ctx *gin.Context) {
	var req services.CreatePagePermissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	perm, err := svc.CreatePagePermission(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Page permission created successfully",
		"data":    perm,
	})
}

// UpdatePagePermission updates an existing page permission
// @Summary Update a page permission
// @Tags page-permissions
// @Accept json
// @Produce json
// @Param id path int true "Page permission ID"
// @Param permission body services.UpdatePagePermissionRequest true "Updated page permission information"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /page-permissions/{id} [put]
func UpdatePagePermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdatePagePermissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	perm, err := svc.UpdatePagePermission(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Page permission updated successfully",
		"data":    perm,
	})
}

// DeletePagePermission deletes a page permission and its service links
// @Summary Delete a page permission
// @Description Delete a page permission; service link rows are removed with it
// @Tags page-permissions
// @Accept json
// @Produce json
// @Param id path int true "Page permission ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string
// @Router /page-permissions/{id} [delete]
func DeletePagePermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewPermissionCatalogService(database.DB)
	if err := svc.DeletePagePermission(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Page permission deleted successfully",
	})
}
