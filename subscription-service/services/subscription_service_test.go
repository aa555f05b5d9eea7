package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entitlement-backend/shared/database/models"
	"entitlement-backend/shared/utils/apperrors"
)

func TestSubscriptionService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	t.Run("create subscription successfully", func(t *testing.T) {
		resp, err := svc.Create(ctx, &CreateSubscriptionRequest{
			Name:             "Basic Plan",
			Validity:         12,
			Cost:             499,
			ActiveStatus:     true,
			SubscriptionType: models.SubscriptionTypeMonth,
		})
		require.NoError(t, err)
		assert.NotZero(t, resp.ID)
		assert.Equal(t, "Basic Plan", resp.Name)
		assert.Equal(t, models.SubscriptionTypeMonth, resp.SubscriptionType)
		assert.Empty(t, resp.Services)
	})

	t.Run("duplicate name is a conflict", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateSubscriptionRequest{
			Name:             "Basic Plan",
			Validity:         12,
			Cost:             499,
			SubscriptionType: models.SubscriptionTypeMonth,
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("non-positive cost is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateSubscriptionRequest{
			Name:             "Free Plan",
			Validity:         12,
			Cost:             0,
			SubscriptionType: models.SubscriptionTypeMonth,
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("non-positive validity is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateSubscriptionRequest{
			Name:             "Short Plan",
			Validity:         0,
			Cost:             100,
			SubscriptionType: models.SubscriptionTypeDays,
		})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("unknown subscription type is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, &CreateSubscriptionRequest{
			Name:             "Weird Plan",
			Validity:         1,
			Cost:             100,
			SubscriptionType: models.SubscriptionType("WEEKLY"),
		})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestSubscriptionService_Update(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	first := createTestSubscription(t, db, "First Plan")
	createTestSubscription(t, db, "Second Plan")

	t.Run("update own fields keeping the same name", func(t *testing.T) {
		resp, err := svc.Update(ctx, first.ID, &CreateSubscriptionRequest{
			Name:             "First Plan",
			Validity:         24,
			Cost:             1299,
			ActiveStatus:     false,
			SubscriptionType: models.SubscriptionTypeYear,
		})
		require.NoError(t, err)
		assert.Equal(t, 24, resp.Validity)
		assert.Equal(t, 1299, resp.Cost)
		assert.False(t, resp.ActiveStatus)
	})

	t.Run("renaming onto another subscription is a conflict", func(t *testing.T) {
		_, err := svc.Update(ctx, first.ID, &CreateSubscriptionRequest{
			Name:             "Second Plan",
			Validity:         12,
			Cost:             999,
			SubscriptionType: models.SubscriptionTypeMonth,
		})
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		_, err := svc.Update(ctx, 9999, &CreateSubscriptionRequest{
			Name:             "Ghost Plan",
			Validity:         12,
			Cost:             999,
			SubscriptionType: models.SubscriptionTypeMonth,
		})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestSubscriptionService_ListActive(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	for _, name := range []string{"Plan A", "Plan B", "Plan C", "Plan D"} {
		createTestSubscription(t, db, name)
	}
	inactive := createTestSubscription(t, db, "Retired Plan")
	require.NoError(t, db.Model(inactive).Update("active_status", false).Error)

	resp, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, resp, 3)
	assert.Equal(t, "Plan A", resp[0].Name)
	assert.Equal(t, "Plan C", resp[2].Name)
}

func TestSubscriptionService_Delete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()

	t.Run("unknown id is not found", func(t *testing.T) {
		err := svc.Delete(ctx, 9999)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("held subscription cannot be deleted", func(t *testing.T) {
		sub := createTestSubscription(t, db, "Held Plan")
		org := &models.Organization{
			OrganizationName: "Acme Ltd",
			Gstin:            "27AAAAA0000A1Z5",
			Pan:              "AAAAA0000A",
			Tan:              "DELA00000A",
			Cin:              "U12345MH2020PTC000001",
		}
		require.NoError(t, db.Create(org).Error)
		require.NoError(t, db.Create(&models.OrganizationSubscription{
			SubscriptionID: sub.ID,
			OrganizationID: org.ID,
		}).Error)

		err := svc.Delete(ctx, sub.ID)
		assert.True(t, apperrors.IsReferenced(err))
		assert.EqualValues(t, 1, countRows(t, db, &models.Subscription{}, "id = ?", sub.ID))
	})

	t.Run("delete removes link rows but keeps the services", func(t *testing.T) {
		sub := createTestSubscription(t, db, "Linked Plan")
		service := createTestService(t, db, "reporting")
		require.NoError(t, db.Create(&models.SubscriptionServiceLink{
			SubscriptionID: sub.ID,
			ServiceID:      service.ID,
		}).Error)

		require.NoError(t, svc.Delete(ctx, sub.ID))

		assert.EqualValues(t, 0, countRows(t, db, &models.Subscription{}, "id = ?", sub.ID))
		assert.EqualValues(t, 0, countRows(t, db, &models.SubscriptionServiceLink{}, "subscription_id = ?", sub.ID))
		assert.EqualValues(t, 1, countRows(t, db, &models.Service{}, "id = ?", service.ID))
	})
}
