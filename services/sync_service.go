package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"onebooking-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Inbound protocol events.
const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventBookingRefunded  = "booking.refunded"
)

// Audit event types emitted by the reconciler.
const (
	SyncEventCreate       = "create"
	SyncEventUpdate       = "update"
	SyncEventStatusChange = "status_change"
)

const fallbackCurrency = "THB"

type SyncCustomer struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone,omitempty"`
	CountryCode     string `json:"country_code,omitempty"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

type SyncTransport struct {
	Type              string  `json:"type"`
	HotelName         string  `json:"hotel_name,omitempty"`
	RoomNumber        string  `json:"room_number,omitempty"`
	NonPlayers        int     `json:"non_players,omitempty"`
	PrivatePassengers int     `json:"private_passengers,omitempty"`
	Cost              float64 `json:"cost,omitempty"`
}

// SyncPayload is the inbound sync request body.
type SyncPayload struct {
	Event                 string                `json:"event"`
	SourceBookingID       string                `json:"source_booking_id"`
	BookingRef            string                `json:"booking_ref"`
	PackageName           string                `json:"package_name"`
	PackagePrice          float64               `json:"package_price"`
	ActivityDate          string                `json:"activity_date"`
	TimeSlot              string                `json:"time_slot"`
	GuestCount            int                   `json:"guest_count"`
	AdultCount            *int                  `json:"adult_count,omitempty"`
	ChildCount            *int                  `json:"child_count,omitempty"`
	TotalAmount           float64               `json:"total_amount"`
	DiscountAmount        *float64              `json:"discount_amount,omitempty"`
	Currency              string                `json:"currency,omitempty"`
	Status                string                `json:"status,omitempty"`
	Customer              SyncCustomer          `json:"customer"`
	Transport             *SyncTransport        `json:"transport,omitempty"`
	Addons                []models.BookingAddon `json:"addons,omitempty"`
	StripePaymentIntentID string                `json:"stripe_payment_intent_id,omitempty"`
	CreatedAt             string                `json:"created_at,omitempty"`
}

// SyncResult reports an accepted transition back to the endpoint.
type SyncResult struct {
	BookingID string
	EventType string
	Created   bool
}

// SyncService is the inbound reconciler. Per (website_id,
// source_booking_id) it decides between insert, full overwrite of
// sync-owned fields, and rejection. The composite unique index is the
// arbiter under concurrent creates: exactly one insert wins and the
// loser maps to ErrDuplicateBooking.
type SyncService struct {
	DB       *gorm.DB
	Logs     *SyncLogService
	Notifier *NotificationService
}

func NewSyncService(db *gorm.DB, logs *SyncLogService, notifier *NotificationService) *SyncService {
	return &SyncService{DB: db, Logs: logs, Notifier: notifier}
}

// syncPatch holds every sync-owned column. Inbound events overwrite all
// of these and nothing else; admin_notes and pickup_time are not fields
// of this struct, so inbound sync cannot touch them.
type syncPatch struct {
	BookingRef            string
	PackageName           string
	PackagePrice          float64
	ActivityDate          string
	TimeSlot              string
	GuestCount            int
	AdultCount            *int
	ChildCount            *int
	TotalAmount           float64
	DiscountAmount        float64
	Currency              string
	Status                string
	CustomerName          string
	CustomerEmail         string
	CustomerPhone         *string
	CustomerCountryCode   *string
	SpecialRequests       *string
	TransportType         *string
	HotelName             *string
	RoomNumber            *string
	NonPlayers            int
	PrivatePassengers     int
	TransportCost         float64
	Addons                datatypes.JSON
	StripePaymentIntentID *string
	SourceCreatedAt       *time.Time
}

func optString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func buildSyncPatch(payload *SyncPayload) syncPatch {
	patch := syncPatch{
		BookingRef:            payload.BookingRef,
		PackageName:           payload.PackageName,
		PackagePrice:          payload.PackagePrice,
		ActivityDate:          payload.ActivityDate,
		TimeSlot:              payload.TimeSlot,
		GuestCount:            payload.GuestCount,
		AdultCount:            payload.AdultCount,
		ChildCount:            payload.ChildCount,
		TotalAmount:           payload.TotalAmount,
		Currency:              fallbackCurrency,
		Status:                models.StatusConfirmed,
		CustomerName:          payload.Customer.Name,
		CustomerEmail:         payload.Customer.Email,
		CustomerPhone:         optString(payload.Customer.Phone),
		CustomerCountryCode:   optString(payload.Customer.CountryCode),
		SpecialRequests:       optString(payload.Customer.SpecialRequests),
		StripePaymentIntentID: optString(payload.StripePaymentIntentID),
	}

	if payload.DiscountAmount != nil {
		patch.DiscountAmount = *payload.DiscountAmount
	}
	if c := strings.TrimSpace(payload.Currency); c != "" {
		patch.Currency = c
	}
	if st := strings.TrimSpace(payload.Status); st != "" {
		patch.Status = st
	}

	if t := payload.Transport; t != nil {
		patch.TransportType = optString(t.Type)
		patch.HotelName = optString(t.HotelName)
		patch.RoomNumber = optString(t.RoomNumber)
		patch.NonPlayers = t.NonPlayers
		patch.PrivatePassengers = t.PrivatePassengers
		patch.TransportCost = t.Cost
	}

	addons := payload.Addons
	if addons == nil {
		addons = []models.BookingAddon{}
	}
	if b, err := json.Marshal(addons); err == nil {
		patch.Addons = datatypes.JSON(b)
	}

	if raw := strings.TrimSpace(payload.CreatedAt); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			patch.SourceCreatedAt = &ts
		}
	}

	return patch
}

// columns returns the full overwrite set for an update. Every sync-owned
// column is written, including ones going back to their defaults.
func (p syncPatch) columns() map[string]interface{} {
	return map[string]interface{}{
		"booking_ref":              p.BookingRef,
		"package_name":             p.PackageName,
		"package_price":            p.PackagePrice,
		"activity_date":            p.ActivityDate,
		"time_slot":                p.TimeSlot,
		"guest_count":              p.GuestCount,
		"adult_count":              p.AdultCount,
		"child_count":              p.ChildCount,
		"total_amount":             p.TotalAmount,
		"discount_amount":          p.DiscountAmount,
		"currency":                 p.Currency,
		"status":                   p.Status,
		"customer_name":            p.CustomerName,
		"customer_email":           p.CustomerEmail,
		"customer_phone":           p.CustomerPhone,
		"customer_country_code":    p.CustomerCountryCode,
		"special_requests":         p.SpecialRequests,
		"transport_type":           p.TransportType,
		"hotel_name":               p.HotelName,
		"room_number":              p.RoomNumber,
		"non_players":              p.NonPlayers,
		"private_passengers":       p.PrivatePassengers,
		"transport_cost":           p.TransportCost,
		"addons":                   p.Addons,
		"stripe_payment_intent_id": p.StripePaymentIntentID,
		"source_created_at":        p.SourceCreatedAt,
	}
}

func (p syncPatch) toBooking(websiteID, sourceBookingID string) models.Booking {
	return models.Booking{
		ID:                    uuid.NewString(),
		WebsiteID:             websiteID,
		SourceBookingID:       sourceBookingID,
		BookingRef:            p.BookingRef,
		PackageName:           p.PackageName,
		PackagePrice:          p.PackagePrice,
		ActivityDate:          p.ActivityDate,
		TimeSlot:              p.TimeSlot,
		GuestCount:            p.GuestCount,
		AdultCount:            p.AdultCount,
		ChildCount:            p.ChildCount,
		TotalAmount:           p.TotalAmount,
		DiscountAmount:        p.DiscountAmount,
		Currency:              p.Currency,
		Status:                p.Status,
		CustomerName:          p.CustomerName,
		CustomerEmail:         p.CustomerEmail,
		CustomerPhone:         p.CustomerPhone,
		CustomerCountryCode:   p.CustomerCountryCode,
		SpecialRequests:       p.SpecialRequests,
		TransportType:         p.TransportType,
		HotelName:             p.HotelName,
		RoomNumber:            p.RoomNumber,
		NonPlayers:            p.NonPlayers,
		PrivatePassengers:     p.PrivatePassengers,
		TransportCost:         p.TransportCost,
		Addons:                p.Addons,
		StripePaymentIntentID: p.StripePaymentIntentID,
		SourceCreatedAt:       p.SourceCreatedAt,
	}
}

// Validate collects every missing required field.
func (p *SyncPayload) Validate() *ValidationError {
	var missing []string
	if strings.TrimSpace(p.SourceBookingID) == "" {
		missing = append(missing, "source_booking_id")
	}
	if strings.TrimSpace(p.BookingRef) == "" {
		missing = append(missing, "booking_ref")
	}
	if strings.TrimSpace(p.Customer.Email) == "" {
		missing = append(missing, "customer.email")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ProcessEvent runs one inbound event through the state machine.
//
//	booking.created  + absent  -> insert            (create)
//	booking.created  + present -> ErrDuplicateBooking
//	other events     + present -> overwrite         (update / status_change)
//	other events     + absent  -> fallback insert   (create)
//
// The fallback insert tolerates out-of-order delivery where an update
// arrives before its creation event. Validation failures return before
// any mutation and write no audit row; accepted transitions write
// exactly one inbound sync log.
func (s *SyncService) ProcessEvent(website *models.Website, payload *SyncPayload) (*SyncResult, error) {
	if verr := payload.Validate(); verr != nil {
		return nil, verr
	}

	patch := buildSyncPatch(payload)

	var booking models.Booking
	eventType := SyncEventCreate

	if payload.Event == EventBookingCreated {
		created, err := s.insertBooking(website.ID, payload.SourceBookingID, patch)
		if err != nil {
			return nil, err
		}
		booking = *created
	} else {
		var existing models.Booking
		err := s.DB.
			Where("website_id = ? AND source_booking_id = ?", website.ID, payload.SourceBookingID).
			First(&existing).Error
		switch {
		case err == nil:
			if uerr := s.DB.Model(&existing).Updates(patch.columns()).Error; uerr != nil {
				return nil, fmt.Errorf("failed to update booking: %w", uerr)
			}
			booking = existing
			eventType = SyncEventUpdate
			if payload.Event == EventBookingCancelled || payload.Event == EventBookingRefunded {
				eventType = SyncEventStatusChange
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, ierr := s.fallbackInsert(website.ID, payload.SourceBookingID, patch)
			if ierr != nil {
				return nil, ierr
			}
			booking = *created
		default:
			return nil, fmt.Errorf("failed to look up booking: %w", err)
		}
	}

	if err := s.Logs.LogInbound(booking.ID, website.ID, eventType, payload); err != nil {
		log.Printf("warning: inbound sync log write failed for booking %s: %v", booking.ID, err)
	}

	if eventType == SyncEventCreate && s.Notifier != nil {
		s.Notifier.DispatchBookingCreated(website, payload)
	}

	return &SyncResult{
		BookingID: booking.ID,
		EventType: eventType,
		Created:   eventType == SyncEventCreate,
	}, nil
}

// insertBooking is the Absent -> Active transition for booking.created.
// A pre-check gives the common replay case a clean rejection; the unique
// index catches the concurrent race, where both arrivals pass the check
// and exactly one insert succeeds.
func (s *SyncService) insertBooking(websiteID, sourceBookingID string, patch syncPatch) (*models.Booking, error) {
	var count int64
	if err := s.DB.Model(&models.Booking{}).
		Where("website_id = ? AND source_booking_id = ?", websiteID, sourceBookingID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing booking: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateBooking
	}

	booking := patch.toBooking(websiteID, sourceBookingID)
	if err := s.DB.Create(&booking).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, ErrDuplicateBooking
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &booking, nil
}

// fallbackInsert handles an update/cancel for a never-seen key. If a
// concurrent create wins the insert race, the row now exists, so the
// event is applied as the overwrite it was meant to be.
func (s *SyncService) fallbackInsert(websiteID, sourceBookingID string, patch syncPatch) (*models.Booking, error) {
	booking := patch.toBooking(websiteID, sourceBookingID)
	err := s.DB.Create(&booking).Error
	if err == nil {
		return &booking, nil
	}
	if !isDuplicateKeyErr(err) {
		return nil, fmt.Errorf("failed to create booking from fallback: %w", err)
	}

	var existing models.Booking
	if ferr := s.DB.
		Where("website_id = ? AND source_booking_id = ?", websiteID, sourceBookingID).
		First(&existing).Error; ferr != nil {
		return nil, fmt.Errorf("failed to load booking after insert race: %w", ferr)
	}
	if uerr := s.DB.Model(&existing).Updates(patch.columns()).Error; uerr != nil {
		return nil, fmt.Errorf("failed to update booking after insert race: %w", uerr)
	}
	return &existing, nil
}
