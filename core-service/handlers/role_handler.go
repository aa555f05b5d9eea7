package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/core-service/services"
	"entitlement-backend/shared/database"
)

// GetRoles retrieves all roles
// @Summary Get all roles
// @Tags roles
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /roles [get]
func GetRoles(ctx *gin.Context) {
	svc := services.NewRoleService(database.DB)

	roles, err := svc.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roles,
	})
}

// GetRole retrieves a single role by ID
// @Summary Get role by ID
// @Tags roles
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /roles/{id} [get]
func GetRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewRoleService(database.DB)
	role, err := svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    role,
	})
}

// CreateRole creates a new role
// @Summary Create a new role
// @Tags roles
// @Accept json
// @Produce json
// @Param role body services.CreateRoleRequest true "Role information"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Role name already exists"
// @Router /roles [post]
func CreateRole(ctx *gin.Context) {
	var req services.CreateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewRoleService(database.DB)
	role, err := svc.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Role created successfully",
		"data":    role,
	})
}

// UpdateRole updates an existing role
// @Summary Update a role
// @Tags roles
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Param role body services.UpdateRoleRequest true "Updated role information"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /roles/{id} [put]
func UpdateRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewRoleService(database.DB)
	role, err := svc.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role updated successfully",
		"data":    role,
	})
}

// DeleteRole deletes a role not held by any user
// @Summary Delete a role
// @Description Delete a role; refused while any user still holds it
// @Tags roles
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Role is assigned to users"
// @Router /roles/{id} [delete]
func DeleteRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewRoleService(database.DB)
	if err := svc.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Role deleted successfully",
	})
}

// GetUsersByRole retrieves the users holding a role
// @Summary Get users by role
// @Tags roles
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /roles/{id}/users [get]
func GetUsersByRole(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewUserService(database.DB)
	users, err := svc.GetUsersByRole(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}
