package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
)

func TestPermissionCatalogService_ApiPermissions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionCatalogService(db)
	ctx := context.Background()

	t.Run("create api permission successfully", func(t *testing.T) {
		resp, err := svc.CreateApiPermission(ctx, &CreateApiPermissionRequest{
			Name:   "create_order",
			Method: models.HttpMethodPost,
			ApiURL: "/api/orders",
			Status: true,
		})
		require.NoError(t, err)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, models.HttpMethodPost, resp.Method)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		_, err := svc.CreateApiPermission(ctx, &CreateApiPermissionRequest{
			Method: models.HttpMethodGet,
			ApiURL: "/api/orders",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown http method is rejected", func(t *testing.T) {
		_, err := svc.CreateApiPermission(ctx, &CreateApiPermissionRequest{
			Name:   "patch_order",
			Method: models.HttpMethod("PATCH"),
			ApiURL: "/api/orders",
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		_, err := svc.CreateApiPermission(ctx, &CreateApiPermissionRequest{
			Name:   "create_order",
			Method: models.HttpMethodPost,
			ApiURL: "/api/orders",
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("update validates the method", func(t *testing.T) {
		perm := createTestApiPermission(t, db, "list_orders")
		bad := models.HttpMethod("HEAD")
		_, err := svc.UpdateApiPermission(ctx, perm.ID, &UpdateApiPermissionRequest{Method: &bad})
		assert.True(t, apperrors.IsValidation(err))

		good := models.HttpMethodDelete
		resp, err := svc.UpdateApiPermission(ctx, perm.ID, &UpdateApiPermissionRequest{Method: &good})
		require.NoError(t, err)
		assert.Equal(t, models.HttpMethodDelete, resp.Method)
	})

	t.Run("delete removes service link rows with the permission", func(t *testing.T) {
		perm := createTestApiPermission(t, db, "cancel_order")
		service := createTestService(t, db, "orders")
		require.NoError(t, db.Create(&models.ServiceApiPermissionLink{
			ServiceID:       service.ID,
			ApiPermissionID: perm.ID,
		}).Error)

		require.NoError(t, svc.DeleteApiPermission(ctx, perm.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.ApiPermission{}, "id = ?", perm.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.ServiceApiPermissionLink{}, "api_permission_id = ?", perm.ID))
		assert.EqualValues(t, 1, countRows(t, db, &models.Service{}, "id = ?", service.ID))
	})
}

func TestPermissionCatalogService_PagePermissions(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionCatalogService(db)
	ctx := context.Background()

	t.Run("status defaults to active when unset", func(t *testing.T) {
		resp, err := svc.CreatePagePermission(ctx, &CreatePagePermissionRequest{
			Name:    "orders_page",
			PageURL: "/pages/orders",
		})
		require.NoError(t, err)
		assert.True(t, resp.Status)
	})

	t.Run("explicit status is honoured", func(t *testing.T) {
		off := false
		resp, err := svc.CreatePagePermission(ctx, &CreatePagePermissionRequest{
			Name:    "drafts_page",
			PageURL: "/pages/drafts",
			Status:  &off,
		})
		require.NoError(t, err)
		assert.False(t, resp.Status)
	})

	t.Run("missing page url is rejected", func(t *testing.T) {
		_, err := svc.CreatePagePermission(ctx, &CreatePagePermissionRequest{Name: "broken_page"})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("delete removes service link rows with the permission", func(t *testing.T) {
		perm := createTestPagePermission(t, db, "settings_page")
		service := createTestService(t, db, "settings")
		require.NoError(t, db.Create(&models.ServicePagePermissionLink{
			ServiceID:        service.ID,
			PagePermissionID: perm.ID,
		}).Error)

		require.NoError(t, svc.DeletePagePermission(ctx, perm.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.PagePermission{}, "id = ?", perm.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.ServicePagePermissionLink{}, "page_permission_id = ?", perm.ID))
	})
}
