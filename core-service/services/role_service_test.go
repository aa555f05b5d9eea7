package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
)

func TestRoleService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	ctx := context.Background()

	t.Run("create role successfully", func(t *testing.T) {
		role, err := svc.Create(ctx, &CreateRoleRequest{Name: "AUDITOR", Description: "Read-only access"})
		require.NoError(t, err)
		assert.NotZero(t, role.ID)
		assert.Equal(t, "AUDITOR", role.Name)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateRoleRequest{Name: "AUDITOR"})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("seeded role names are taken", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateRoleRequest{Name: "ADMIN"})
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestRoleService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	ctx := context.Background()

	role, err := svc.Create(ctx, &CreateRoleRequest{Name: "SUPPORT"})
	require.NoError(t, err)

	t.Run("patch description only", func(t *testing.T) {
		desc := "Handles support tickets"
		updated, err := svc.Update(ctx, role.ID, &UpdateRoleRequest{Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, "SUPPORT", updated.Name)
		assert.Equal(t, desc, updated.Description)
	})

	t.Run("renaming onto a seeded role is a conflict", func(t *testing.T) {
		name := "USER"
		_, err := svc.Update(ctx, role.ID, &UpdateRoleRequest{Name: &name})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		name := "GHOST"
		_, err := svc.Update(ctx, 9999, &UpdateRoleRequest{Name: &name})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestRoleService_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	ctx := context.Background()

	t.Run("a held role cannot be deleted", func(t *testing.T) {
		role, err := svc.Create(ctx, &CreateRoleRequest{Name: "OPERATOR"})
		require.NoError(t, err)
		require.NoError(t, db.Create(&models.User{
			EmailID:  "operator@example.com",
			MobileNo: "9811111111",
			RoleID:   &role.ID,
		}).Error)

		err = svc.Delete(ctx, role.ID)
		assert.True(t, apperrors.IsReferenced(err))
		assert.EqualValues(t, 1, countRows(t, db, &models.Role{}, "id = ?", role.ID))
	})

	t.Run("an unreferenced role is deleted", func(t *testing.T) {
		role, err := svc.Create(ctx, &CreateRoleRequest{Name: "TEMP"})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, role.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.Role{}, "id = ?", role.ID))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		err := svc.Delete(ctx, 9999)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserService_GetUsersByRole(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	admin, err := users.Register(ctx, registerRequest("byrole", sub.ID))
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, createUserRequest(admin.ID, "byrole-m1"))
	require.NoError(t, err)

	var adminRole models.Role
	require.NoError(t, db.Where("role = ?", "ADMIN").First(&adminRole).Error)

	result, err := users.GetUsersByRole(ctx, adminRole.ID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, admin.ID, result[0].ID)
}
