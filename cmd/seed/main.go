package main

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"entitlement-backend/shared/config"
	"entitlement-backend/shared/database"
	"entitlement-backend/shared/database/models"
)

func main() {
	log.Println("🌱 Starting database seeding...")

	// Load configuration
	config.LoadConfig()

	// Initialize database (runs migrations and seeds default roles)
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Seed a development subscription catalog
	if err := seedSampleCatalog(database.DB); err != nil {
		log.Fatalf("Failed to seed sample catalog: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

// seedSampleCatalog creates a small subscription graph for local
// development: one plan, one service and a handful of API permissions.
// It is idempotent; an existing plan with the same name is left alone.
func seedSampleCatalog(db *gorm.DB) error {
	var existing models.Subscription
	err := db.Where("name = ?", "Starter Plan").First(&existing).Error
	if err == nil {
		log.Println("✅ Sample catalog already present - skipping")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		subscription := models.Subscription{
			Name:             "Starter Plan",
			Validity:         1,
			Cost:             499,
			ActiveStatus:     true,
			SubscriptionType: models.SubscriptionTypeYear,
		}
		if err := tx.Create(&subscription).Error; err != nil {
			return err
		}

		service := models.Service{
			Name:         "User Management",
			Description:  "User, role and permission administration",
			ActiveStatus: true,
		}
		if err := tx.Create(&service).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.SubscriptionServiceLink{
			SubscriptionID: subscription.ID,
			ServiceID:      service.ID,
		}).Error; err != nil {
			return err
		}

		apiPermissions := []models.ApiPermission{
			{Name: "create_user", Method: models.HttpMethodPost, ApiURL: "/api/users", Description: "Create organization users", Status: true},
			{Name: "list_user", Method: models.HttpMethodGet, ApiURL: "/api/users", Description: "List organization users", Status: true},
			{Name: "update_role", Method: models.HttpMethodPut, ApiURL: "/api/roles/:id", Description: "Update roles", Status: true},
			{Name: "view_subscription", Method: models.HttpMethodGet, ApiURL: "/api/subscriptions", Description: "View subscription plans", Status: true},
		}
		for i := range apiPermissions {
			if err := tx.Create(&apiPermissions[i]).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.ServiceApiPermissionLink{
				ServiceID:       service.ID,
				ApiPermissionID: apiPermissions[i].ID,
			}).Error; err != nil {
				return err
			}
		}

		pagePermission := models.PagePermission{
			Name:        "user_dashboard",
			Description: "User administration dashboard",
			Status:      true,
			PageURL:     "/dashboard/users",
		}
		if err := tx.Create(&pagePermission).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ServicePagePermissionLink{
			ServiceID:        service.ID,
			PagePermissionID: pagePermission.ID,
		}).Error; err != nil {
			return err
		}

		log.Println("✅ Sample catalog created")
		return nil
	})
}
