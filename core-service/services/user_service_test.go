package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
	"entitlement-backend/shared/utils/query"
)

func TestUserService_Register(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	t.Run("registers the organization admin with the full graph", func(t *testing.T) {
		resp, err := svc.Register(ctx, registerRequest("reg1", sub.ID))
		require.NoError(t, err)

		assert.Equal(t, "000001", resp.CustomerID)
		require.NotNil(t, resp.Role)
		assert.Equal(t, "ADMIN", resp.Role.Name)
		require.NotNil(t, resp.Login)
		assert.Equal(t, "admin-reg1@example.com", resp.Login.Username)
		assert.True(t, resp.Login.AccountActive)
		require.NotNil(t, resp.Organization)
		assert.Equal(t, "Org reg1", resp.Organization.OrganizationName)
		require.NotNil(t, resp.Organization.OrganizationSubscription)
		assert.Equal(t, sub.ID, resp.Organization.OrganizationSubscription.SubscriptionID)
		require.NotNil(t, resp.Address)
		assert.Equal(t, strconv.Itoa(int(resp.ID)), resp.Address.ReferenceID)

		require.NotNil(t, resp.Permission)
		assert.Equal(t, "API_USER", resp.Permission.Name)

		var doc PermissionDocument
		require.NoError(t, json.Unmarshal(resp.Permission.Document, &doc))
		assert.NotNil(t, findModule(doc.SubscriptionModule, "subscription_01"))
		assert.NotNil(t, findModule(doc.SubscriptionModule, "service_01"))
		assert.NotNil(t, findModule(doc.UserModule, "role_01"))
	})

	t.Run("customer ids are sequential", func(t *testing.T) {
		resp, err := svc.Register(ctx, registerRequest("reg2", sub.ID))
		require.NoError(t, err)
		assert.Equal(t, "000002", resp.CustomerID)
	})

	t.Run("duplicate email is a conflict and writes nothing", func(t *testing.T) {
		req := registerRequest("reg3", sub.ID)
		req.EmailID = "admin-reg1@example.com"
		_, err := svc.Register(ctx, req)
		assert.True(t, apperrors.IsConflict(err))
		assert.EqualValues(t, 0, countRows(t, db, &models.Organization{}, "gstin = ?", "GSTIN-reg3"))
	})

	t.Run("duplicate organization identifier is a conflict", func(t *testing.T) {
		req := registerRequest("reg4", sub.ID)
		req.Organization.Gstin = "GSTIN-reg1"
		_, err := svc.Register(ctx, req)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown subscription is not found", func(t *testing.T) {
		_, err := svc.Register(ctx, registerRequest("reg5", 9999))
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserService_CreateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	admin, err := svc.Register(ctx, registerRequest("org1", sub.ID))
	require.NoError(t, err)

	t.Run("member inherits the admin's organization and permission", func(t *testing.T) {
		member, err := svc.CreateUser(ctx, createUserRequest(admin.ID, "m1"))
		require.NoError(t, err)

		require.NotNil(t, member.Role)
		assert.Equal(t, "USER", member.Role.Name)
		require.NotNil(t, member.Organization)
		assert.Equal(t, admin.Organization.ID, member.Organization.ID)
		assert.Equal(t, "000002", member.CustomerID)

		require.NotNil(t, member.Permission)
		assert.Equal(t, admin.Permission.Name, member.Permission.Name)
		assert.JSONEq(t, string(admin.Permission.Document), string(member.Permission.Document))
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		req := createUserRequest(admin.ID, "m2")
		req.EmailID = "member-m1@example.com"
		_, err := svc.CreateUser(ctx, req)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown admin is not found", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, createUserRequest(9999, "m3"))
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserService_UpdateUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	admin, err := svc.Register(ctx, registerRequest("upd1", sub.ID))
	require.NoError(t, err)
	member, err := svc.CreateUser(ctx, createUserRequest(admin.ID, "upd-m1"))
	require.NoError(t, err)

	t.Run("patches own fields and the address", func(t *testing.T) {
		name := "Anita"
		city := "Pune"
		resp, err := svc.UpdateUser(ctx, member.ID, &UpdateUserRequest{
			FirstName: &name,
			Address:   &UpdateAddressRequest{City: &city},
		})
		require.NoError(t, err)
		assert.Equal(t, "Anita", resp.FirstName)
		require.NotNil(t, resp.Address)
		assert.Equal(t, "Pune", resp.Address.City)
	})

	t.Run("mobile number colliding with another user is a conflict", func(t *testing.T) {
		mobile := admin.MobileNo
		_, err := svc.UpdateUser(ctx, member.ID, &UpdateUserRequest{MobileNo: &mobile})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("admin may patch the organization", func(t *testing.T) {
		display := "Renamed Org"
		resp, err := svc.UpdateUser(ctx, admin.ID, &UpdateUserRequest{
			Organization: &UpdateOrganizationRequest{DisplayName: &display},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Organization)
		assert.Equal(t, "Renamed Org", resp.Organization.DisplayName)
	})

	t.Run("non-admin organization patch is ignored", func(t *testing.T) {
		display := "Member Rename"
		resp, err := svc.UpdateUser(ctx, member.ID, &UpdateUserRequest{
			Organization: &UpdateOrganizationRequest{DisplayName: &display},
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Organization)
		assert.Equal(t, "Renamed Org", resp.Organization.DisplayName)
	})

	t.Run("organization identifier colliding with another org is a conflict", func(t *testing.T) {
		other, err := svc.Register(ctx, registerRequest("upd2", sub.ID))
		require.NoError(t, err)
		gstin := "GSTIN-upd1"
		_, err = svc.UpdateUser(ctx, other.ID, &UpdateUserRequest{
			Organization: &UpdateOrganizationRequest{Gstin: &gstin},
		})
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	t.Run("shared organization survives a member delete", func(t *testing.T) {
		admin, err := svc.Register(ctx, registerRequest("del1", sub.ID))
		require.NoError(t, err)
		member, err := svc.CreateUser(ctx, createUserRequest(admin.ID, "del-m1"))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteUser(ctx, member.ID))

		assert.EqualValues(t, 0, countRows(t, db, &models.User{}, "id = ?", member.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.Permission{}, "user_id = ?", member.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.Login{}, "username = ?", "member-del-m1@example.com"))
		assert.EqualValues(t, 1, countRows(t, db, &models.Organization{}, "id = ?", admin.Organization.ID))
		assert.EqualValues(t, 1, countRows(t, db, &models.OrganizationSubscription{}, "organization_id = ?", admin.Organization.ID))
	})

	t.Run("sole user delete cascades to the organization", func(t *testing.T) {
		admin, err := svc.Register(ctx, registerRequest("del2", sub.ID))
		require.NoError(t, err)

		require.NoError(t, svc.DeleteUser(ctx, admin.ID))

		assert.EqualValues(t, 0, countRows(t, db, &models.User{}, "id = ?", admin.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.Organization{}, "id = ?", admin.Organization.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.OrganizationSubscription{}, "organization_id = ?", admin.Organization.ID))
		// The subscription catalog itself is untouched.
		assert.EqualValues(t, 1, countRows(t, db, &models.Subscription{}, "id = ?", sub.ID))
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		err := svc.DeleteUser(ctx, 9999)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUserService_GetByUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	admin, err := svc.Register(ctx, registerRequest("name1", sub.ID))
	require.NoError(t, err)

	resp, err := svc.GetByUsername(ctx, "admin-name1@example.com")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.ID)

	_, err = svc.GetByUsername(ctx, "nobody@example.com")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserService_List(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	admin, err := svc.Register(ctx, registerRequest("list1", sub.ID))
	require.NoError(t, err)
	for i := 0; i < 24; i++ {
		req := createUserRequest(admin.ID, fmt.Sprintf("l%03d", i))
		if i == 0 {
			req.Address.City = "Hyderabad"
		}
		_, err := svc.CreateUser(ctx, req)
		require.NoError(t, err)
	}

	t.Run("pages through the full set", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 2, Size: 10})
		require.NoError(t, err)
		assert.Len(t, result.Data, 10)
		assert.EqualValues(t, 25, result.TotalElements)
		assert.EqualValues(t, 3, result.TotalPages)
	})

	t.Run("the last page holds the remainder", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 3, Size: 10})
		require.NoError(t, err)
		assert.Len(t, result.Data, 5)
	})

	t.Run("search matches joined address columns", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 1, Size: 10, SearchKey: "hyder"})
		require.NoError(t, err)
		require.Len(t, result.Data, 1)
		assert.EqualValues(t, 1, result.TotalElements)
		assert.Equal(t, "member-l000@example.com", result.Data[0].EmailID)
	})

	t.Run("search matches organization columns", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 1, Size: 100, SearchKey: "org list1"})
		require.NoError(t, err)
		assert.EqualValues(t, 25, result.TotalElements)
	})

	t.Run("no match yields an empty page", func(t *testing.T) {
		result, err := svc.List(ctx, query.PageParams{Page: 1, Size: 10, SearchKey: "no-such-user"})
		require.NoError(t, err)
		assert.Empty(t, result.Data)
		assert.EqualValues(t, 0, result.TotalElements)
		assert.EqualValues(t, 0, result.TotalPages)
	})
}

func TestUserService_GetUserPermissionDocument(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()
	sub := seedCatalog(t, db)

	admin, err := svc.Register(ctx, registerRequest("doc1", sub.ID))
	require.NoError(t, err)

	doc, err := svc.GetUserPermissionDocument(ctx, admin.ID)
	require.NoError(t, err)
	require.True(t, json.Valid(doc))

	var parsed PermissionDocument
	require.NoError(t, json.Unmarshal(doc, &parsed))
	assert.NotNil(t, findModule(parsed.SubscriptionModule, "subscription_01"))
	assert.Nil(t, findModule(parsed.UserModule, "user_01"))

	// Growing the subscription graph shows up on the next read.
	var service models.Service
	require.NoError(t, db.Where("name = ?", "Administration").First(&service).Error)
	perm := &models.ApiPermission{Name: "create_user", Method: models.HttpMethodPost, ApiURL: "/api/users", Status: true}
	require.NoError(t, db.Create(perm).Error)
	require.NoError(t, db.Create(&models.ServiceApiPermissionLink{
		ServiceID:       service.ID,
		ApiPermissionID: perm.ID,
	}).Error)

	doc, err = svc.GetUserPermissionDocument(ctx, admin.ID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(doc, &parsed))
	userModule := findModule(parsed.UserModule, "user_01")
	require.NotNil(t, userModule)
	assert.Equal(t, "create_user", userModule.Actions[0].Name)

	// The stored permission row carries the recompiled document.
	var stored models.Permission
	require.NoError(t, db.Where("user_id = ?", admin.ID).First(&stored).Error)
	assert.JSONEq(t, string(doc), stored.Document)

	_, err = svc.GetUserPermissionDocument(ctx, 9999)
	assert.True(t, apperrors.IsNotFound(err))
}
