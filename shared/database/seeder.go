package database

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"entitlement-backend/shared/config"
	"entitlement-backend/shared/database/models"
)

// SeedDatabase seeds the database with initial data
func SeedDatabase(db *gorm.DB) error {
	log.Println("🌱 Checking database seed data...")

	rolesCreated, err := seedDefaultRoles(db)
	if err != nil {
		return err
	}

	if rolesCreated > 0 {
		log.Printf("✅ Database seeding completed (%d roles created)", rolesCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

// seedDefaultRoles makes sure the admin and user roles referenced by the
// registration flow exist.
func seedDefaultRoles(db *gorm.DB) (int, error) {
	cfg := config.GetConfig()

	defaultRoles := []models.Role{
		{Name: cfg.RoleAdmin, Description: "Organization administrator"},
		{Name: cfg.RoleUser, Description: "Organization member"},
	}

	created := 0
	for _, role := range defaultRoles {
		var existing models.Role
		err := db.Where("role = ?", role.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}
		if err := db.Create(&role).Error; err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}
