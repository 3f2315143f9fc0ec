package services

import (
	"errors"
	"testing"

	"onebooking-backend/models"
)

func setupSync(t *testing.T) (*SyncService, *models.Website) {
	t.Helper()
	db := openTestDB(t)
	logs := NewSyncLogService(db)
	svc := NewSyncService(db, logs, nil)
	website := seedWebsite(t, db, "test-site", nil, nil)
	return svc, website
}

func TestCreateInsertsBooking(t *testing.T) {
	svc, website := setupSync(t)

	result, err := svc.ProcessEvent(website, validCreatePayload("SRC-1"))
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if !result.Created || result.EventType != SyncEventCreate {
		t.Fatalf("expected create result, got %+v", result)
	}

	var booking models.Booking
	if err := svc.DB.First(&booking, "id = ?", result.BookingID).Error; err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking.WebsiteID != website.ID || booking.SourceBookingID != "SRC-1" {
		t.Fatalf("wrong identity on booking: %+v", booking)
	}
	if booking.Currency != "THB" {
		t.Fatalf("expected fallback currency THB, got %q", booking.Currency)
	}
	if booking.Status != models.StatusConfirmed {
		t.Fatalf("expected default status confirmed, got %q", booking.Status)
	}
	if booking.DiscountAmount != 0 {
		t.Fatalf("expected default discount 0, got %v", booking.DiscountAmount)
	}

	var logCount int64
	svc.DB.Model(&models.SyncLog{}).
		Where("booking_id = ? AND direction = ? AND status = ? AND event_type = ?",
			booking.ID, models.SyncDirectionInbound, models.SyncStatusSuccess, SyncEventCreate).
		Count(&logCount)
	if logCount != 1 {
		t.Fatalf("expected exactly one inbound success log, got %d", logCount)
	}
}

func TestDuplicateCreateRejected(t *testing.T) {
	svc, website := setupSync(t)

	if _, err := svc.ProcessEvent(website, validCreatePayload("SRC-1")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.ProcessEvent(website, validCreatePayload("SRC-1"))
	if !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("expected ErrDuplicateBooking, got %v", err)
	}

	var count int64
	svc.DB.Model(&models.Booking{}).
		Where("website_id = ? AND source_booking_id = ?", website.ID, "SRC-1").
		Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one booking row, got %d", count)
	}
}

func TestFallbackInsertOnUpdateForUnknownKey(t *testing.T) {
	svc, website := setupSync(t)

	payload := validCreatePayload("SRC-9")
	payload.Event = EventBookingUpdated
	payload.PackageName = "Late Arriving Update"

	result, err := svc.ProcessEvent(website, payload)
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if !result.Created || result.EventType != SyncEventCreate {
		t.Fatalf("expected fallback insert to report create, got %+v", result)
	}

	var booking models.Booking
	if err := svc.DB.First(&booking, "id = ?", result.BookingID).Error; err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking.PackageName != "Late Arriving Update" {
		t.Fatalf("fallback insert did not carry payload values: %q", booking.PackageName)
	}
}

func TestUpdateOverwritesSyncOwnedFields(t *testing.T) {
	svc, website := setupSync(t)

	created, err := svc.ProcessEvent(website, validCreatePayload("SRC-2"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Staff-owned note set out of band; inbound sync must not touch it.
	notes := "called customer, confirmed twice"
	if err := svc.DB.Model(&models.Booking{}).
		Where("id = ?", created.BookingID).
		Update("admin_notes", notes).Error; err != nil {
		t.Fatalf("set admin notes: %v", err)
	}

	update := validCreatePayload("SRC-2")
	update.Event = EventBookingUpdated
	update.TotalAmount = 4500
	update.TimeSlot = "14:00"
	update.Customer.Phone = "+66 81 234 5678"

	result, err := svc.ProcessEvent(website, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.EventType != SyncEventUpdate {
		t.Fatalf("expected update event, got %q", result.EventType)
	}

	var booking models.Booking
	if err := svc.DB.First(&booking, "id = ?", created.BookingID).Error; err != nil {
		t.Fatalf("load booking: %v", err)
	}
	if booking.TotalAmount != 4500 || booking.TimeSlot != "14:00" {
		t.Fatalf("sync-owned fields not overwritten: %+v", booking)
	}
	if booking.CustomerPhone == nil || *booking.CustomerPhone != "+66 81 234 5678" {
		t.Fatalf("customer phone not applied")
	}
	if booking.AdminNotes == nil || *booking.AdminNotes != notes {
		t.Fatalf("inbound sync touched admin_notes: %v", booking.AdminNotes)
	}
}

func TestCancelledEmitsStatusChange(t *testing.T) {
	svc, website := setupSync(t)

	created, err := svc.ProcessEvent(website, validCreatePayload("SRC-3"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cancel := validCreatePayload("SRC-3")
	cancel.Event = EventBookingCancelled
	cancel.Status = models.StatusCancelled

	result, err := svc.ProcessEvent(website, cancel)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if result.EventType != SyncEventStatusChange {
		t.Fatalf("expected status_change, got %q", result.EventType)
	}

	var booking models.Booking
	svc.DB.First(&booking, "id = ?", created.BookingID)
	if booking.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled status, got %q", booking.Status)
	}
}

func TestValidationListsEveryMissingField(t *testing.T) {
	svc, website := setupSync(t)

	payload := &SyncPayload{Event: EventBookingCreated}
	_, err := svc.ProcessEvent(website, payload)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"source_booking_id", "booking_ref", "customer.email"}
	if len(verr.Missing) != len(want) {
		t.Fatalf("expected %v missing, got %v", want, verr.Missing)
	}
	for i, field := range want {
		if verr.Missing[i] != field {
			t.Fatalf("expected %v missing, got %v", want, verr.Missing)
		}
	}

	var bookings, logs int64
	svc.DB.Model(&models.Booking{}).Count(&bookings)
	svc.DB.Model(&models.SyncLog{}).Count(&logs)
	if bookings != 0 || logs != 0 {
		t.Fatalf("validation failure must not mutate state: bookings=%d logs=%d", bookings, logs)
	}
}

func TestMissingCustomerEmailOnly(t *testing.T) {
	svc, website := setupSync(t)

	payload := validCreatePayload("SRC-4")
	payload.Customer.Email = ""

	_, err := svc.ProcessEvent(website, payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Missing) != 1 || verr.Missing[0] != "customer.email" {
		t.Fatalf("expected [customer.email], got %v", verr.Missing)
	}
}

func TestRefundedRoutesThroughUpdatePath(t *testing.T) {
	svc, website := setupSync(t)

	if _, err := svc.ProcessEvent(website, validCreatePayload("SRC-5")); err != nil {
		t.Fatalf("create: %v", err)
	}

	refund := validCreatePayload("SRC-5")
	refund.Event = EventBookingRefunded
	refund.Status = models.StatusRefunded

	result, err := svc.ProcessEvent(website, refund)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if result.EventType != SyncEventStatusChange {
		t.Fatalf("expected status_change for refund, got %q", result.EventType)
	}
}
