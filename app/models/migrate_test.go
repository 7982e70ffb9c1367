package models

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Every model must migrate on sqlite, which backs the package test
// suites. MySQL-specific DDL belongs in the migrations directory, not in
// struct tags.
func TestAutoMigrateAllModels(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&User{}, &Address{},
		&Product{}, &ProductVariant{},
		&Cart{}, &CartItem{},
		&Order{}, &OrderItem{}, &Payment{},
		&Plan{}, &Subscription{}, &SubscriptionCycle{},
		&PaymentWebhookEvent{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
}
