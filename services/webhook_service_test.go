package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"onebooking-backend/models"
	"onebooking-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func seedBooking(t *testing.T, db *gorm.DB, website *models.Website, sourceID string) *models.Booking {
	t.Helper()
	booking := models.Booking{
		ID:              uuid.NewString(),
		WebsiteID:       website.ID,
		SourceBookingID: sourceID,
		BookingRef:      "BK-" + sourceID,
		PackageName:     "Island Tour",
		ActivityDate:    "2025-06-01",
		TimeSlot:        "10:00",
		GuestCount:      2,
		TotalAmount:     3000,
		Currency:        "THB",
		Status:          models.StatusConfirmed,
		CustomerName:    "Alice Example",
		CustomerEmail:   "alice@example.com",
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return &booking
}

type receivedWebhook struct {
	body    []byte
	headers http.Header
}

func webhookReceiver(status int, got *receivedWebhook) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if got != nil {
			got.body = body
			got.headers = r.Header.Clone()
		}
		w.WriteHeader(status)
		if status >= 500 {
			w.Write([]byte("source exploded"))
		}
	}))
}

func TestSendUpdateWebhookDelivers(t *testing.T) {
	db := openTestDB(t)
	logs := NewSyncLogService(db)
	svc := NewWebhookService(db, logs)

	var got receivedWebhook
	server := webhookReceiver(http.StatusOK, &got)
	defer server.Close()

	secret := "whsec_testsecret"
	website := seedWebsite(t, db, "hook-site", strPtr(server.URL), &secret)
	booking := seedBooking(t, db, website, "SRC-1")

	outcome := svc.SendUpdateWebhook(booking, website, []string{"status", "admin_notes"}, "staff@onebooking.local")
	if outcome != DeliveryDelivered {
		t.Fatalf("expected Delivered, got %v", outcome)
	}

	var payload WebhookPayload
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("decode delivered body: %v", err)
	}
	if payload.Event != "booking.status_changed" {
		t.Fatalf("status in updated fields must produce booking.status_changed, got %q", payload.Event)
	}
	if payload.SourceBookingID != "SRC-1" || payload.UpdatedBy != "staff@onebooking.local" {
		t.Fatalf("payload metadata wrong: %+v", payload)
	}

	sig := got.headers.Get("X-Webhook-Signature")
	ts := got.headers.Get("X-Webhook-Timestamp")
	if sig == "" || ts == "" {
		t.Fatalf("expected timestamp-bound signature headers, got %v", got.headers)
	}
	if !utils.VerifyWebhookSignature(string(got.body), sig, secret, ts) {
		t.Fatalf("delivered signature does not verify")
	}

	var entry models.SyncLog
	if err := db.Where("booking_id = ? AND direction = ?", booking.ID, models.SyncDirectionOutbound).
		First(&entry).Error; err != nil {
		t.Fatalf("load outbound log: %v", err)
	}
	if entry.Status != models.SyncStatusSuccess {
		t.Fatalf("expected success log, got %q", entry.Status)
	}
}

func TestSendUpdateWebhookWithoutStatusIsUpdatedEvent(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebhookService(db, NewSyncLogService(db))

	var got receivedWebhook
	server := webhookReceiver(http.StatusOK, &got)
	defer server.Close()

	website := seedWebsite(t, db, "hook-site2", strPtr(server.URL), nil)
	booking := seedBooking(t, db, website, "SRC-2")

	if outcome := svc.SendUpdateWebhook(booking, website, []string{"hotel_name"}, "staff"); outcome != DeliveryDelivered {
		t.Fatalf("expected Delivered, got %v", outcome)
	}

	var payload WebhookPayload
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Event != "booking.updated" {
		t.Fatalf("expected booking.updated, got %q", payload.Event)
	}
	if got.headers.Get("X-Webhook-Signature") != "" {
		t.Fatalf("no secret configured, signature header must be absent")
	}
}

func TestSendUpdateWebhookSkippedWithoutURL(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebhookService(db, NewSyncLogService(db))

	website := seedWebsite(t, db, "no-hook-site", nil, nil)
	booking := seedBooking(t, db, website, "SRC-3")

	if outcome := svc.SendUpdateWebhook(booking, website, []string{"status"}, "staff"); outcome != DeliverySkipped {
		t.Fatalf("expected Skipped, got %v", outcome)
	}

	var count int64
	db.Model(&models.SyncLog{}).Count(&count)
	if count != 0 {
		t.Fatalf("skipped delivery must not log, got %d rows", count)
	}
}

func TestDeliveryFailureIsIsolatedAndLogged(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebhookService(db, NewSyncLogService(db))

	server := webhookReceiver(http.StatusInternalServerError, nil)
	defer server.Close()

	website := seedWebsite(t, db, "failing-site", strPtr(server.URL), nil)
	booking := seedBooking(t, db, website, "SRC-4")

	if outcome := svc.SendUpdateWebhook(booking, website, []string{"status"}, "staff"); outcome != DeliveryFailed {
		t.Fatalf("expected Failed, got %v", outcome)
	}

	var entries []models.SyncLog
	db.Where("booking_id = ?", booking.ID).Find(&entries)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one log row, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Status != models.SyncStatusFailed {
		t.Fatalf("expected pending row promoted to failed, got %q", entry.Status)
	}
	if entry.ErrorMessage == nil || *entry.ErrorMessage == "" {
		t.Fatalf("expected captured error detail")
	}
}

func TestTransportErrorDoesNotPropagate(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebhookService(db, NewSyncLogService(db))

	server := webhookReceiver(http.StatusOK, nil)
	server.Close() // connection refused from here on

	website := seedWebsite(t, db, "dead-site", strPtr(server.URL), nil)
	booking := seedBooking(t, db, website, "SRC-5")

	if outcome := svc.SendUpdateWebhook(booking, website, []string{"status"}, "staff"); outcome != DeliveryFailed {
		t.Fatalf("expected Failed on refused connection, got %v", outcome)
	}

	var entry models.SyncLog
	if err := db.Where("booking_id = ?", booking.ID).First(&entry).Error; err != nil {
		t.Fatalf("load log: %v", err)
	}
	if entry.Status != models.SyncStatusFailed || entry.ErrorMessage == nil {
		t.Fatalf("expected failed log with error message, got %+v", entry)
	}
}

func TestSyncToSourceSendsFullSnapshotWithRawDigest(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebhookService(db, NewSyncLogService(db))

	var got receivedWebhook
	server := webhookReceiver(http.StatusOK, &got)
	defer server.Close()

	secret := "whsec_resync"
	website := seedWebsite(t, db, "resync-site", strPtr(server.URL), &secret)
	booking := seedBooking(t, db, website, "SRC-6")

	outcome, err := svc.SyncToSource(booking, website, "staff@onebooking.local")
	if err != nil {
		t.Fatalf("SyncToSource: %v", err)
	}
	if outcome != DeliveryDelivered {
		t.Fatalf("expected Delivered, got %v", outcome)
	}

	var payload WebhookPayload
	if err := json.Unmarshal(got.body, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	wantFields := map[string]bool{
		"status": true, "hotel_name": true, "room_number": true, "activity_date": true,
		"time_slot": true, "guest_count": true, "special_requests": true, "admin_notes": true,
	}
	if len(payload.UpdatedFields) != len(wantFields) {
		t.Fatalf("expected full snapshot field set, got %v", payload.UpdatedFields)
	}
	for _, f := range payload.UpdatedFields {
		if !wantFields[f] {
			t.Fatalf("unexpected snapshot field %q", f)
		}
	}

	if got.headers.Get("X-Webhook-Signature") != "" || got.headers.Get("X-Webhook-Timestamp") != "" {
		t.Fatalf("manual resync must not use the timestamp-bound scheme")
	}
	sig := got.headers.Get("X-OneBooking-Signature")
	if sig == "" {
		t.Fatalf("expected raw digest header")
	}
	if sig != utils.SignRaw(string(got.body), secret) {
		t.Fatalf("raw digest does not match body")
	}
}

func TestSyncToSourceWithoutURL(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebhookService(db, NewSyncLogService(db))

	website := seedWebsite(t, db, "bare-site", nil, nil)
	booking := seedBooking(t, db, website, "SRC-7")

	outcome, err := svc.SyncToSource(booking, website, "staff")
	if err != ErrNoWebhookURL {
		t.Fatalf("expected ErrNoWebhookURL, got %v", err)
	}
	if outcome != DeliverySkipped {
		t.Fatalf("expected Skipped, got %v", outcome)
	}
}
