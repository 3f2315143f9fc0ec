package services

import (
	"fmt"
	"sync/atomic"
	"testing"

	"onebooking-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// openTestDB gives each test an isolated in-memory database with the
// full schema migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Admin{},
		&models.Website{},
		&models.Booking{},
		&models.SyncLog{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

// seedWebsite registers an active source website for tests.
func seedWebsite(t *testing.T, db *gorm.DB, id string, webhookURL, webhookSecret *string) *models.Website {
	t.Helper()

	website := models.Website{
		ID:            id,
		Name:          "Test Site " + id,
		Domain:        id + ".example.com",
		APIKey:        id + "_sk_live_0123456789abcdef0123456789abcdef0123456789abcdef",
		WebhookURL:    webhookURL,
		WebhookSecret: webhookSecret,
		IsActive:      true,
	}
	if err := db.Create(&website).Error; err != nil {
		t.Fatalf("seed website %s: %v", id, err)
	}
	return &website
}

// validCreatePayload is the canonical inbound create event used across
// the reconciler tests.
func validCreatePayload(sourceID string) *SyncPayload {
	return &SyncPayload{
		Event:           EventBookingCreated,
		SourceBookingID: sourceID,
		BookingRef:      "BK-" + sourceID,
		PackageName:     "Island Tour",
		PackagePrice:    1500,
		ActivityDate:    "2025-06-01",
		TimeSlot:        "10:00",
		GuestCount:      2,
		TotalAmount:     3000,
		Customer: SyncCustomer{
			Name:  "Alice Example",
			Email: "alice@example.com",
		},
	}
}
