package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"entitlement-backend/shared/utils/apperrors"
)

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// parseIDParam reads a numeric path parameter.
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid id format",
			"message": "Path parameter '" + name + "' must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

// respondError translates a service error into the HTTP response shape
// used across the API.
func respondError(ctx *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		ctx.JSON(status, gin.H{
			"error":   appErr.Message,
			"message": appErr.Details,
		})
		return
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": err.Error(),
	})
}
