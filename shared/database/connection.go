package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"entitlement-backend/shared/config"
	"entitlement-backend/shared/database/models"
)

var DB *gorm.DB

// getLogLevel returns appropriate log level based on environment
func getLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.DBHost == "localhost" || cfg.DBHost == "127.0.0.1" {
		return logger.Warn
	}
	return logger.Error
}

// InitDatabase initializes the database connection and runs migrations
func InitDatabase() error {
	cfg := config.GetConfig()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
	)

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(getLogLevel(cfg)),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("✅ Database connection established successfully")

	// Run migrations
	if err := Migrate(DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Seed default roles
	if err := SeedDatabase(DB); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	return nil
}

// AllModels lists every model in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Subscription{},
		&models.Service{},
		&models.ApiPermission{},
		&models.PagePermission{},
		&models.SubscriptionServiceLink{},
		&models.ServiceApiPermissionLink{},
		&models.ServicePagePermissionLink{},
		&models.Role{},
		&models.Login{},
		&models.Address{},
		&models.Organization{},
		&models.OrganizationSubscription{},
		&models.User{},
		&models.Permission{},
	}
}

// RegisterJoinTables points gorm's many-to-many relations at the explicit
// link models so preloads and mutations share one set of mapping tables.
func RegisterJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Subscription{}, "Services", &models.SubscriptionServiceLink{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.Service{}, "Subscriptions", &models.SubscriptionServiceLink{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.Service{}, "ApiPermissions", &models.ServiceApiPermissionLink{}); err != nil {
		return err
	}
	if err := db.SetupJoinTable(&models.Service{}, "PagePermissions", &models.ServicePagePermissionLink{}); err != nil {
		return err
	}
	return nil
}

// Migrate registers join tables and runs all database migrations
func Migrate(db *gorm.DB) error {
	log.Println("🔄 Checking database schema...")

	if err := RegisterJoinTables(db); err != nil {
		return fmt.Errorf("failed to register join tables: %w", err)
	}

	modelsToMigrate := AllModels()

	// Check if all tables exist
	migrator := db.Migrator()
	allTablesExist := true

	for _, model := range modelsToMigrate {
		if !migrator.HasTable(model) {
			allTablesExist = false
			break
		}
	}

	// If all tables exist, skip migration
	if allTablesExist {
		log.Println("✅ Database schema is up to date - skipping migration")
		return nil
	}

	// Auto migrate all models
	migratedCount := 0
	for _, model := range modelsToMigrate {
		if !migrator.HasTable(model) {
			migratedCount++
		}

		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if migratedCount > 0 {
		log.Printf("✅ Database migrations completed (%d tables created/updated)", migratedCount)
	} else {
		log.Println("✅ Database schema is up to date")
	}

	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
