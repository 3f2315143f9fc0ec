package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"onebooking-backend/models"
)

const defaultLinePushEndpoint = "https://api.line.me/v2/bot/message/push"

// NotificationService pushes new-booking alerts to the staff LINE group.
// It is strictly best-effort: disabled silently when the channel is not
// configured, dispatched on a detached goroutine, and every failure is
// swallowed after a warning log. Nothing in the inbound sync path waits
// on it or sees its errors.
type NotificationService struct {
	ChannelToken string
	GroupID      string
	Endpoint     string
	Client       *http.Client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		ChannelToken: os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		GroupID:      os.Getenv("LINE_GROUP_ID"),
		Endpoint:     defaultLinePushEndpoint,
		Client:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *NotificationService) Enabled() bool {
	return s.ChannelToken != "" && s.GroupID != ""
}

// DispatchBookingCreated fires the push without joining it. The spawned
// goroutine deliberately carries no request context: a client
// disconnect on the sync endpoint must not cancel the notification.
func (s *NotificationService) DispatchBookingCreated(website *models.Website, payload *SyncPayload) {
	if !s.Enabled() {
		return
	}
	message := formatBookingMessage(website, payload)
	go func() {
		if err := s.push(message); err != nil {
			log.Printf("[LINE] notification error: %v", err)
		}
	}()
}

func (s *NotificationService) push(message string) error {
	body, err := json.Marshal(map[string]interface{}{
		"to": s.GroupID,
		"messages": []map[string]string{
			{"type": "text", "text": message},
		},
	})
	if err != nil {
		return fmt.Errorf("cannot marshal push body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.ChannelToken)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func formatBookingMessage(website *models.Website, payload *SyncPayload) string {
	var sb strings.Builder
	sb.WriteString("New booking\n")
	sb.WriteString(fmt.Sprintf("Website: %s\n", website.Name))
	sb.WriteString(fmt.Sprintf("Ref: %s\n", payload.BookingRef))
	sb.WriteString(fmt.Sprintf("Customer: %s (%s)\n", payload.Customer.Name, payload.Customer.Email))
	if payload.Customer.Phone != "" {
		sb.WriteString(fmt.Sprintf("Phone: %s\n", payload.Customer.Phone))
	}
	sb.WriteString(fmt.Sprintf("Package: %s\n", payload.PackageName))
	sb.WriteString(fmt.Sprintf("Date: %s %s\n", payload.ActivityDate, payload.TimeSlot))

	guests := describeGuests(payload)
	sb.WriteString(fmt.Sprintf("Guests: %s\n", guests))

	if t := payload.Transport; t != nil && t.Type != "" {
		transport := t.Type
		if t.HotelName != "" {
			transport += " - " + t.HotelName
			if t.RoomNumber != "" {
				transport += " (room " + t.RoomNumber + ")"
			}
		}
		sb.WriteString(fmt.Sprintf("Transport: %s\n", transport))
	}

	currency := payload.Currency
	if currency == "" {
		currency = fallbackCurrency
	}
	sb.WriteString(fmt.Sprintf("Total: %.2f %s\n", payload.TotalAmount, currency))

	status := payload.Status
	if status == "" {
		status = models.StatusConfirmed
	}
	sb.WriteString(fmt.Sprintf("Status: %s", status))

	if payload.Customer.SpecialRequests != "" {
		sb.WriteString(fmt.Sprintf("\nRequests: %s", payload.Customer.SpecialRequests))
	}
	return sb.String()
}

func describeGuests(payload *SyncPayload) string {
	nonPlayers := 0
	if payload.Transport != nil {
		nonPlayers = payload.Transport.NonPlayers
	}
	if payload.AdultCount != nil {
		guests := fmt.Sprintf("%d adults", *payload.AdultCount)
		if payload.ChildCount != nil && *payload.ChildCount > 0 {
			guests += fmt.Sprintf(" + %d children", *payload.ChildCount)
		}
		if nonPlayers > 0 {
			guests += fmt.Sprintf(" + %d non-players", nonPlayers)
		}
		return guests
	}
	if nonPlayers > 0 {
		return fmt.Sprintf("%d guests + %d non-players", payload.GuestCount, nonPlayers)
	}
	return fmt.Sprintf("%d guests", payload.GuestCount)
}
