package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entitlement-backend/core-service/services"
	"entitlement-backend/shared/database"
	"entitlement-backend/shared/utils/query"
)

// Register registers a new organization with its first admin user
// @Summary Register an organization admin
// @Description Create the organization, its subscription record, and the first user with the admin role
// @Tags users
// @Accept json
// @Produce json
// @Param registration body services.RegisterRequest true "Registration information"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "Subscription or role not found"
// @Failure 409 {object} map[string]string "Email, mobile or organization identifier already taken"
// @Router /users/register [post]
func Register(ctx *gin.Context) {
	var req services.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewUserService(database.DB)
	user, err := svc.Register(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"data":    user,
	})
}

// CreateUser creates an additional user inside an admin's organization
// @Summary Create an organization user
// @Description Create a user that inherits the admin's organization and permission document
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.CreateUserRequest true "User information"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Admin user not found"
// @Failure 409 {object} map[string]string "Email or mobile already taken"
// @Router /users [post]
func CreateUser(ctx *gin.Context) {
	var req services.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewUserService(database.DB)
	user, err := svc.CreateUser(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"data":    user,
	})
}

// GetUsers retrieves users with pagination and search
// @Summary Get all users
// @Description Get users with pagination and free-text search across user, address and organization columns
// @Tags users
// @Accept json
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Items per page (default: 10)"
// @Param search_key query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /users [get]
func GetUsers(ctx *gin.Context) {
	params := query.ParsePageParams(ctx)

	svc := services.NewUserService(database.DB)
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

// GetUser retrieves a single user by ID
// @Summary Get user by ID
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /users/{id} [get]
func GetUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewUserService(database.DB)
	user, err := svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetUserByUsername retrieves a user through its login name
// @Summary Get user by username
// @Tags users
// @Accept json
// @Produce json
// @Param username path string true "Login username"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /users/by-username/{username} [get]
func GetUserByUsername(ctx *gin.Context) {
	username := ctx.Param("username")

	svc := services.NewUserService(database.DB)
	user, err := svc.GetByUsername(ctx.Request.Context(), username)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// UpdateUser updates an existing user
// @Summary Update a user
// @Description Patch user fields and address; the organization block applies only to admins
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body services.UpdateUserRequest true "Updated user information"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users/{id} [put]
func UpdateUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	svc := services.NewUserService(database.DB)
	user, err := svc.UpdateUser(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User updated successfully",
		"data":    user,
	})
}

// DeleteUser deletes a user and its owned records
// @Summary Delete a user
// @Description Delete the user with its address, login and permission; the organization cascades only for its last user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} handlers.SuccessResponse
// @Failure 404 {object} map[string]string
// @Router /users/{id} [delete]
func DeleteUser(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewUserService(database.DB)
	if err := svc.DeleteUser(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

// GetUserPermissions returns a user's compiled permission document
// @Summary Get user permission document
// @Description Get the user's effective entitlements, recompiled from the current subscription graph
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /users/{id}/permissions [get]
func GetUserPermissions(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	svc := services.NewUserService(database.DB)
	document, err := svc.GetUserPermissionDocument(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    document,
	})
}
