package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"onebooking-backend/models"
	"onebooking-backend/utils"

	"gorm.io/gorm"
)

// DeliveryOutcome is the result of one outbound webhook attempt.
type DeliveryOutcome string

const (
	DeliveryDelivered DeliveryOutcome = "delivered"
	DeliverySkipped   DeliveryOutcome = "skipped"
	DeliveryFailed    DeliveryOutcome = "failed"
)

const (
	webhookTimeout   = 10 * time.Second
	maxErrorBodyLen  = 500
	headerSignature  = "X-Webhook-Signature"
	headerTimestamp  = "X-Webhook-Timestamp"
	headerRawDigest  = "X-OneBooking-Signature"
	eventUpdated     = "booking.updated"
	eventStatusMoved = "booking.status_changed"
)

// WebhookPayload is the body delivered to a source website.
type WebhookPayload struct {
	Event           string                 `json:"event"`
	SourceBookingID string                 `json:"source_booking_id"`
	UpdatedFields   []string               `json:"updated_fields"`
	Data            map[string]interface{} `json:"data"`
	UpdatedAt       string                 `json:"updated_at"`
	UpdatedBy       string                 `json:"updated_by"`
}

// WebhookService notifies source websites of central edits. A delivery
// is one POST with a bounded timeout: no retry queue exists, a failed
// attempt stays failed until a human triggers a force resync. Transport
// and HTTP failures are recorded in the sync log and returned as a
// Failed outcome, never as an error.
type WebhookService struct {
	DB     *gorm.DB
	Logs   *SyncLogService
	Client *http.Client
}

func NewWebhookService(db *gorm.DB, logs *SyncLogService) *WebhookService {
	return &WebhookService{
		DB:     db,
		Logs:   logs,
		Client: &http.Client{Timeout: webhookTimeout},
	}
}

// fieldValues renders current booking values for the named fields using
// the model's JSON column names.
func fieldValues(booking *models.Booking, fields []string) map[string]interface{} {
	raw, err := json.Marshal(booking)
	if err != nil {
		return map[string]interface{}{}
	}
	var all map[string]interface{}
	if err := json.Unmarshal(raw, &all); err != nil {
		return map[string]interface{}{}
	}
	data := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		data[f] = all[f]
	}
	return data
}

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// SendUpdateWebhook delivers an edit-triggered diff webhook, signed with
// the timestamp-bound scheme when a secret is configured.
func (s *WebhookService) SendUpdateWebhook(booking *models.Booking, website *models.Website, updatedFields []string, updatedBy string) DeliveryOutcome {
	if website == nil || website.WebhookURL == nil || *website.WebhookURL == "" {
		log.Printf("No webhook configured for website %s, skipping delivery", booking.WebsiteID)
		return DeliverySkipped
	}

	event := eventUpdated
	if contains(updatedFields, "status") {
		event = eventStatusMoved
	}

	payload := WebhookPayload{
		Event:           event,
		SourceBookingID: booking.SourceBookingID,
		UpdatedFields:   updatedFields,
		Data:            fieldValues(booking, updatedFields),
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
		UpdatedBy:       updatedBy,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal webhook payload for booking %s: %v", booking.ID, err)
		return DeliveryFailed
	}

	headers := map[string]string{}
	if website.WebhookSecret != nil && *website.WebhookSecret != "" {
		timestamp := fmt.Sprintf("%d", time.Now().Unix())
		headers[headerSignature] = utils.GenerateWebhookSignature(string(body), *website.WebhookSecret, timestamp)
		headers[headerTimestamp] = timestamp
	}

	return s.deliver(booking, website, event, payload, body, headers)
}

// SyncToSource is the manual force-resync: a full snapshot of the
// staff-visible state, regardless of what changed, signed with the raw
// digest scheme. Same logging path as edit-triggered sends.
func (s *WebhookService) SyncToSource(booking *models.Booking, website *models.Website, updatedBy string) (DeliveryOutcome, error) {
	if website == nil || website.WebhookURL == nil || *website.WebhookURL == "" {
		return DeliverySkipped, ErrNoWebhookURL
	}

	snapshotFields := []string{
		"status", "hotel_name", "room_number", "activity_date", "time_slot",
		"guest_count", "special_requests", "admin_notes",
	}

	payload := WebhookPayload{
		Event:           eventUpdated,
		SourceBookingID: booking.SourceBookingID,
		UpdatedFields:   snapshotFields,
		Data:            fieldValues(booking, snapshotFields),
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
		UpdatedBy:       updatedBy,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return DeliveryFailed, fmt.Errorf("failed to marshal resync payload: %w", err)
	}

	headers := map[string]string{}
	if website.WebhookSecret != nil && *website.WebhookSecret != "" {
		headers[headerRawDigest] = utils.SignRaw(string(body), *website.WebhookSecret)
	}

	return s.deliver(booking, website, eventUpdated, payload, body, headers), nil
}

// deliver records a pending sync log, performs the POST, and promotes
// the log to a terminal status. Nothing here can fail the caller's
// request: every failure path ends in a failed log row and a Failed
// outcome.
func (s *WebhookService) deliver(booking *models.Booking, website *models.Website, event string, payload WebhookPayload, body []byte, headers map[string]string) DeliveryOutcome {
	if err := s.Logs.LogOutboundPending(booking.ID, website.ID, event, payload); err != nil {
		log.Printf("Failed to record pending delivery for booking %s: %v", booking.ID, err)
		return DeliveryFailed
	}

	req, err := http.NewRequest(http.MethodPost, *website.WebhookURL, bytes.NewReader(body))
	if err != nil {
		s.finishDelivery(booking.ID, models.SyncStatusFailed, err.Error())
		return DeliveryFailed
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		// Timeouts, DNS failures, refused connections: terminal for the
		// delivery, invisible to the triggering request.
		s.finishDelivery(booking.ID, models.SyncStatusFailed, err.Error())
		return DeliveryFailed
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMsg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(respBody))
		s.finishDelivery(booking.ID, models.SyncStatusFailed, errMsg)
		log.Printf("Webhook delivery failed for booking %s: %s", booking.ID, errMsg)
		return DeliveryFailed
	}

	s.finishDelivery(booking.ID, models.SyncStatusSuccess, "")
	return DeliveryDelivered
}

func (s *WebhookService) finishDelivery(bookingID, status, errMsg string) {
	var msgPtr *string
	if errMsg != "" {
		msgPtr = &errMsg
	}
	if err := s.Logs.ResolvePending(bookingID, status, msgPtr); err != nil {
		log.Printf("Failed to resolve pending sync log for booking %s: %v", bookingID, err)
	}
}
