package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/core-service/services"
	"entitlement-backend/shared/database"
	"entitlement-backend/shared/utils/query"
)

// GetPermissions retrieves permission records with pagination and search
// @Summary Get all permission records
// @Tags permissions
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Items per page (default: 10)"
// @Param search_key query string false "Search term matched against the permission name"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /permissions [get]
func GetPermissions(ctx *gin.Context) {
	params := query.ParsePageParams(ctx)

	svc := services.NewPermissionService(database.DB)
	result, err := svc.List(ctx.Request.Context(), params)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":        true,
		"data":           result.Data,
		"total_pages":    result.TotalPages,
		"total_elements": result.TotalElements,
	})
}

// GetPermission retrieves a single permission record by ID
// @Summary Get permission record by ID
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path int true "Permission ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /permissions/{id} [get]
func GetPermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewPermissionService(database.DB)
	perm, err := svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    perm,
	})
}

// UpdatePermission updates a permission record
// @Summary Update a permission record
// @Description Patch the permission name or replace the stored document with new JSON
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path int true "Permission ID"
// @Param permission body services.UpdatePermissionRequest true "Updated permission information"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Document is not valid JSON"
// @Failure 404 {object} map[string]string
// @Router /permissions/{id} [put]
func UpdatePermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdatePermissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewPermissionService(database.DB)
	perm, err := svc.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Permission updated successfully",
		"data":    perm,
	})
}

// DeletePermission deletes an unassigned permission record
// @Summary Delete a permission record
// @Description Delete a permission record; refused while a user still holds it
// @Tags permissions
// @Accept json
// @Produce json
// @Param id path int true "Permission ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Permission is assigned to a user"
// @Router /permissions/{id} [delete]
func DeletePermission(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewPermissionService(database.DB)
	if err := svc.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Permission deleted successfully",
	})
}
