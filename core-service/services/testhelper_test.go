package services

import (
	"fmt"
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
	require.NoError(t, database.SeedDatabase(db))

	return db
}

// seedCatalog creates one subscription with a service carrying the API
// permissions the registration flow compiles into a document.
func seedCatalog(t *testing.T, db *gorm.DB) *models.Subscription {
	sub := &models.Subscription{
		Name:             "Growth Plan",
		Validity:         12,
		Cost:             999,
		ActiveStatus:     true,
		SubscriptionType: models.SubscriptionTypeMonth,
	}
	require.NoError(t, db.Create(sub).Error)

	svc := &models.Service{Name: "Administration", ActiveStatus: true}
	require.NoError(t, db.Create(svc).Error)
	require.NoError(t, db.Create(&models.SubscriptionServiceLink{
		SubscriptionID: sub.ID,
		ServiceID:      svc.ID,
	}).Error)

	perms := []models.ApiPermission{
		{Name: "create_subscription", Method: models.HttpMethodPost, ApiURL: "/api/subscriptions", Status: true},
		{Name: "list_service", Method: models.HttpMethodGet, ApiURL: "/api/services", Status: true},
		{Name: "view_role", Method: models.HttpMethodGet, ApiURL: "/api/roles", Status: true},
	}
	for i := range perms {
		require.NoError(t, db.Create(&perms[i]).Error)
		require.NoError(t, db.Create(&models.ServiceApiPermissionLink{
			ServiceID:       svc.ID,
			ApiPermissionID: perms[i].ID,
		}).Error)
	}

	return sub
}

// registerRequest builds a registration payload unique per suffix.
func registerRequest(suffix string, subscriptionID uint) *RegisterRequest {
	return &RegisterRequest{
		FirstName:      "Asha",
		LastName:       "Rao",
		EmailID:        fmt.Sprintf("admin-%s@example.com", suffix),
		MobileNo:       fmt.Sprintf("98%s", suffix),
		SubscriptionID: subscriptionID,
		Address: AddressRequest{
			AddressLine1: "12 MG Road",
			City:         "Bengaluru",
			State:        "Karnataka",
			Country:      "India",
			Pincode:      "560001",
		},
		Organization: OrganizationRequest{
			OrganizationName: fmt.Sprintf("Org %s", suffix),
			DisplayName:      fmt.Sprintf("Org %s", suffix),
			Gstin:            fmt.Sprintf("GSTIN-%s", suffix),
			Pan:              fmt.Sprintf("PAN-%s", suffix),
			Tan:              fmt.Sprintf("TAN-%s", suffix),
			Cin:              fmt.Sprintf("CIN-%s", suffix),
		},
	}
}

// createUserRequest builds a member payload unique per suffix.
func createUserRequest(adminID uint, suffix string) *CreateUserRequest {
	return &CreateUserRequest{
		AdminID:   adminID,
		FirstName: "Ravi",
		LastName:  "Iyer",
		EmailID:   fmt.Sprintf("member-%s@example.com", suffix),
		MobileNo:  fmt.Sprintf("97%s", suffix),
		Address: AddressRequest{
			AddressLine1: "4 Park Street",
			City:         "Chennai",
			State:        "Tamil Nadu",
			Country:      "India",
			Pincode:      "600001",
		},
	}
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
