package main

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"entitlement-backend/shared/config"
)

func main() {
	log.Println("🗑️ Starting database reset...")

	config.LoadConfig()
	cfg := config.GetConfig()

	dsn := "host=" + cfg.DBHost +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" port=" + cfg.DBPort +
		" sslmode=" + cfg.DBSSLMode +
		" TimeZone=UTC"

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}

	// Link tables first, then the rows they point at
	tables := []string{
		"subscription_services_mapping",
		"service_api_permissions_mapping",
		"service_api_page_permissions_mapping",
		"permission",
		"user",
		"login",
		"address",
		"organization_subscription_details",
		"organization",
		"role",
		"api_permission",
		"page_permission",
		"subscription_service",
		"subscription",
	}

	log.Println("🗑️ Dropping all tables...")

	for _, table := range tables {
		log.Printf("   Dropping table: %s", table)
		db.Exec(`DROP TABLE IF EXISTS "` + table + `" CASCADE;`)
	}

	log.Println("✅ Database reset completed - all tables dropped!")
	log.Println("💡 Run the seed tool to recreate tables and seed data")
}
