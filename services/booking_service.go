package services

import (
	"errors"
	"fmt"
	"time"

	"onebooking-backend/models"

	"gorm.io/gorm"
)

// BookingService serves the dashboard's read and staff-edit paths.
type BookingService struct {
	DB *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db}
}

// BookingFilters narrows the dashboard listing.
type BookingFilters struct {
	WebsiteID string
	Status    string
	DateFrom  string
	DateTo    string
	Search    string
}

// List returns bookings newest-first with their websites preloaded.
func (s *BookingService) List(filters BookingFilters, page, perPage int) ([]models.Booking, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := s.DB.Model(&models.Booking{})
	if filters.WebsiteID != "" {
		query = query.Where("website_id = ?", filters.WebsiteID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.DateFrom != "" {
		query = query.Where("activity_date >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("activity_date <= ?", filters.DateTo)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("booking_ref LIKE ? OR customer_name LIKE ? OR customer_email LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var bookings []models.Booking
	err := query.
		Preload("Website").
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (s *BookingService) GetByID(id string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Preload("Website").First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// StaffPatch is the staff-edit allow-list. It has no fields for
// sync-owned data like prices or customer contact, so a staff edit
// cannot reach those columns.
type StaffPatch struct {
	Status            *string `json:"status"`
	AdminNotes        *string `json:"admin_notes"`
	ActivityDate      *string `json:"activity_date"`
	TimeSlot          *string `json:"time_slot"`
	GuestCount        *int    `json:"guest_count"`
	SpecialRequests   *string `json:"special_requests"`
	TransportType     *string `json:"transport_type"`
	HotelName         *string `json:"hotel_name"`
	RoomNumber        *string `json:"room_number"`
	NonPlayers        *int    `json:"non_players"`
	PrivatePassengers *int    `json:"private_passengers"`
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// changes builds the column update set from fields present in the patch
// that differ from the booking's current value, plus the names of those
// fields for the outbound webhook.
func (p *StaffPatch) changes(b *models.Booking) (map[string]interface{}, []string) {
	updates := map[string]interface{}{}
	var fields []string

	setStr := func(col string, val *string, cur string) {
		if val != nil && *val != cur {
			updates[col] = *val
			fields = append(fields, col)
		}
	}
	setOptStr := func(col string, val, cur *string) {
		if val != nil && *val != derefStr(cur) {
			updates[col] = *val
			fields = append(fields, col)
		}
	}
	setInt := func(col string, val *int, cur int) {
		if val != nil && *val != cur {
			updates[col] = *val
			fields = append(fields, col)
		}
	}

	setStr("status", p.Status, b.Status)
	setOptStr("admin_notes", p.AdminNotes, b.AdminNotes)
	setStr("activity_date", p.ActivityDate, b.ActivityDate)
	setStr("time_slot", p.TimeSlot, b.TimeSlot)
	setInt("guest_count", p.GuestCount, b.GuestCount)
	setOptStr("special_requests", p.SpecialRequests, b.SpecialRequests)
	setOptStr("transport_type", p.TransportType, b.TransportType)
	setOptStr("hotel_name", p.HotelName, b.HotelName)
	setOptStr("room_number", p.RoomNumber, b.RoomNumber)
	setInt("non_players", p.NonPlayers, b.NonPlayers)
	setInt("private_passengers", p.PrivatePassengers, b.PrivatePassengers)

	return updates, fields
}

// ApplyStaffEdit applies a staff patch and returns the refreshed row
// plus the names of the fields that actually changed. An empty field
// list means the edit was a no-op.
func (s *BookingService) ApplyStaffEdit(id string, patch *StaffPatch) (*models.Booking, []string, error) {
	booking, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	updates, changedFields := patch.changes(booking)
	if len(changedFields) == 0 {
		return booking, nil, nil
	}

	if err := s.DB.Model(booking).Updates(updates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update booking: %w", err)
	}

	updated, err := s.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	return updated, changedFields, nil
}

// SetPickupTime stores the HH:MM pickup time on the booking.
func (s *BookingService) SetPickupTime(id, pickupTime string) (*models.Booking, error) {
	booking, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(booking).Update("pickup_time", pickupTime).Error; err != nil {
		return nil, fmt.Errorf("failed to update pickup time: %w", err)
	}
	booking.PickupTime = &pickupTime
	return booking, nil
}

// DashboardStats is the home-page summary.
type DashboardStats struct {
	BookingsToday  int64            `json:"bookings_today"`
	BookingsMonth  int64            `json:"bookings_month"`
	PendingCount   int64            `json:"pending_count"`
	RevenueMonth   float64          `json:"revenue_month"`
	RecentBookings []models.Booking `json:"recent_bookings"`
}

func (s *BookingService) Stats() (*DashboardStats, error) {
	now := time.Now()
	today := now.Format("2006-01-02")
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &DashboardStats{}

	if err := s.DB.Model(&models.Booking{}).
		Where("activity_date = ?", today).
		Count(&stats.BookingsToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's bookings: %w", err)
	}

	if err := s.DB.Model(&models.Booking{}).
		Where("created_at >= ?", monthStart).
		Count(&stats.BookingsMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count month's bookings: %w", err)
	}

	if err := s.DB.Model(&models.Booking{}).
		Where("status = ?", models.StatusPending).
		Count(&stats.PendingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending bookings: %w", err)
	}

	var revenue *float64
	if err := s.DB.Model(&models.Booking{}).
		Where("created_at >= ? AND status NOT IN ?", monthStart,
			[]string{models.StatusCancelled, models.StatusRefunded}).
		Select("SUM(total_amount)").
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if revenue != nil {
		stats.RevenueMonth = *revenue
	}

	if err := s.DB.Preload("Website").
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentBookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load recent bookings: %w", err)
	}

	return stats, nil
}
