package models

import (
	"time"

	"gorm.io/datatypes"
)

// Booking statuses accepted from sources and staff edits.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
	StatusNoShow    = "no_show"
)

// BookingAddon is one entry of the free-form addons list.
type BookingAddon struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Booking is the canonical record aggregated from source websites.
// (website_id, source_booking_id) is the idempotency key: one source
// booking maps to exactly one row here. booking_ref is the human-facing
// reference and is NOT unique across websites.
type Booking struct {
	ID              string `gorm:"primaryKey;size:36" json:"id"`
	WebsiteID       string `gorm:"column:website_id;size:64;index;uniqueIndex:idx_website_source,priority:1" json:"website_id"`
	SourceBookingID string `gorm:"column:source_booking_id;size:128;uniqueIndex:idx_website_source,priority:2" json:"source_booking_id"`
	BookingRef      string `gorm:"column:booking_ref;size:64;index" json:"booking_ref"`

	PackageName  string  `gorm:"column:package_name;size:255" json:"package_name"`
	PackagePrice float64 `gorm:"column:package_price" json:"package_price"`
	ActivityDate string  `gorm:"column:activity_date;size:32;index" json:"activity_date"`
	TimeSlot     string  `gorm:"column:time_slot;size:32" json:"time_slot"`
	GuestCount   int     `gorm:"column:guest_count" json:"guest_count"`
	AdultCount   *int    `gorm:"column:adult_count" json:"adult_count,omitempty"`
	ChildCount   *int    `gorm:"column:child_count" json:"child_count,omitempty"`

	TotalAmount    float64 `gorm:"column:total_amount" json:"total_amount"`
	DiscountAmount float64 `gorm:"column:discount_amount;default:0" json:"discount_amount"`
	Currency       string  `gorm:"size:8;default:THB" json:"currency"`
	Status         string  `gorm:"size:32;index;default:confirmed" json:"status"`

	CustomerName        string  `gorm:"column:customer_name;size:255" json:"customer_name"`
	CustomerEmail       string  `gorm:"column:customer_email;size:255;index" json:"customer_email"`
	CustomerPhone       *string `gorm:"column:customer_phone;size:64" json:"customer_phone"`
	CustomerCountryCode *string `gorm:"column:customer_country_code;size:8" json:"customer_country_code"`
	SpecialRequests     *string `gorm:"column:special_requests;type:text" json:"special_requests"`

	TransportType     *string `gorm:"column:transport_type;size:32" json:"transport_type"`
	HotelName         *string `gorm:"column:hotel_name;size:255" json:"hotel_name"`
	RoomNumber        *string `gorm:"column:room_number;size:64" json:"room_number"`
	NonPlayers        int     `gorm:"column:non_players;default:0" json:"non_players"`
	PrivatePassengers int     `gorm:"column:private_passengers;default:0" json:"private_passengers"`
	TransportCost     float64 `gorm:"column:transport_cost;default:0" json:"transport_cost"`

	Addons                datatypes.JSON `gorm:"column:addons" json:"addons"`
	StripePaymentIntentID *string        `gorm:"column:stripe_payment_intent_id;size:128" json:"stripe_payment_intent_id"`

	// Staff-only fields, never written by inbound sync.
	AdminNotes *string `gorm:"column:admin_notes;type:text" json:"admin_notes"`
	PickupTime *string `gorm:"column:pickup_time;size:8" json:"pickup_time"`

	SourceCreatedAt *time.Time `gorm:"column:source_created_at" json:"source_created_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Website Website `gorm:"foreignKey:WebsiteID;references:ID" json:"website,omitempty"`
}
