package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
	"entitlement-backend/shared/utils/query"
)

func TestPermissionService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db)
	ctx := context.Background()

	record := &models.Permission{PermissionName: "API_USER", Document: "{}"}
	require.NoError(t, db.Create(record).Error)

	t.Run("a valid document replaces the stored blob", func(t *testing.T) {
		doc := `{"subscription_module":[],"user_module":[]}`
		updated, err := svc.Update(ctx, record.ID, &UpdatePermissionRequest{Document: &doc})
		require.NoError(t, err)
		assert.JSONEq(t, doc, updated.Document)
	})

	t.Run("an invalid document is rejected", func(t *testing.T) {
		doc := `{"subscription_module":`
		_, err := svc.Update(ctx, record.ID, &UpdatePermissionRequest{Document: &doc})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("renames the record", func(t *testing.T) {
		name := "API_SERVICE"
		updated, err := svc.Update(ctx, record.ID, &UpdatePermissionRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "API_SERVICE", updated.PermissionName)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		name := "GHOST"
		_, err := svc.Update(ctx, 9999, &UpdatePermissionRequest{Name: &name})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestPermissionService_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db)
	ctx := context.Background()

	t.Run("a record assigned to a user cannot be deleted", func(t *testing.T) {
		user := &models.User{EmailID: "holder@example.com", MobileNo: "9822222222"}
		require.NoError(t, db.Create(user).Error)
		record := &models.Permission{PermissionName: "API_USER", Document: "{}", UserID: &user.ID}
		require.NoError(t, db.Create(record).Error)

		err := svc.Delete(ctx, record.ID)
		assert.True(t, apperrors.IsReferenced(err))
		assert.EqualValues(t, 1, countRows(t, db, &models.Permission{}, "id = ?", record.ID))
	})

	t.Run("an unassigned record is deleted", func(t *testing.T) {
		record := &models.Permission{PermissionName: "ORPHAN", Document: "{}"}
		require.NoError(t, db.Create(record).Error)
		require.NoError(t, svc.Delete(ctx, record.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.Permission{}, "id = ?", record.ID))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := svc.Delete(ctx, 9999)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestPermissionService_List(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, db.Create(&models.Permission{
			PermissionName: fmt.Sprintf("API_USER_%02d", i),
			Document:       "{}",
		}).Error)
	}
	require.NoError(t, db.Create(&models.Permission{PermissionName: "LEGACY", Document: "{}"}).Error)

	t.Run("pages through the records", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 2, Size: 5})
		require.NoError(t, err)
		assert.Len(t, result.Data, 5)
		assert.EqualValues(t, 13, result.TotalElements)
		assert.EqualValues(t, 3, result.TotalPages)
	})

	t.Run("filters by name", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 1, Size: 20, SearchKey: "legacy"})
		require.NoError(t, err)
		require.Len(t, result.Data, 1)
		assert.Equal(t, "LEGACY", result.Data[0].PermissionName)
	})
}
