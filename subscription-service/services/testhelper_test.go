package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"entitlement-backend/shared/database"
	"entitlement-backend/shared/database/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second pooled connection would see a separate empty in-memory
	// database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RegisterJoinTables(db))
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	return db
}

func createTestSubscription(t *testing.T, db *gorm.DB, name string) *models.Subscription {
	sub := &models.Subscription{
		Name:             name,
		Validity:         12,
		Cost:             999,
		ActiveStatus:     true,
		SubscriptionType: models.SubscriptionTypeMonth,
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func createTestService(t *testing.T, db *gorm.DB, name string) *models.Service {
	svc := &models.Service{
		Name:         name,
		Description:  "test service",
		ActiveStatus: true,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func createTestApiPermission(t *testing.T, db *gorm.DB, name string) *models.ApiPermission {
	perm := &models.ApiPermission{
		Name:   name,
		Method: models.HttpMethodGet,
		ApiURL: "/api/" + name,
		Status: true,
	}
	require.NoError(t, db.Create(perm).Error)
	return perm
}

func createTestPagePermission(t *testing.T, db *gorm.DB, name string) *models.PagePermission {
	perm := &models.PagePermission{
		Name:    name,
		Status:  true,
		PageURL: "/pages/" + name,
	}
	require.NoError(t, db.Create(perm).Error)
	return perm
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	var count int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}
