package services

import (
	"encoding/json"
	"fmt"

	"onebooking-backend/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncLogService appends to and reads the sync audit trail. Rows are
// append-only; the only permitted mutation is promoting the latest
// pending outbound row for a booking to a terminal status.
type SyncLogService struct {
	DB *gorm.DB
}

func NewSyncLogService(db *gorm.DB) *SyncLogService {
	return &SyncLogService{DB: db}
}

func marshalPayload(payload interface{}) datatypes.JSON {
	b, err := json.Marshal(payload)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(b)
}

// LogInbound records an accepted inbound transition.
func (s *SyncLogService) LogInbound(bookingID, websiteID, eventType string, payload interface{}) error {
	entry := models.SyncLog{
		ID:        uuid.NewString(),
		BookingID: &bookingID,
		WebsiteID: &websiteID,
		Direction: models.SyncDirectionInbound,
		EventType: eventType,
		Payload:   marshalPayload(payload),
		Status:    models.SyncStatusSuccess,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write inbound sync log: %w", err)
	}
	return nil
}

// LogOutboundPending records an outbound delivery before the network
// call, so an in-flight delivery is observable.
func (s *SyncLogService) LogOutboundPending(bookingID, websiteID, eventType string, payload interface{}) error {
	entry := models.SyncLog{
		ID:        uuid.NewString(),
		BookingID: &bookingID,
		WebsiteID: &websiteID,
		Direction: models.SyncDirectionOutbound,
		EventType: eventType,
		Payload:   marshalPayload(payload),
		Status:    models.SyncStatusPending,
	}
	if err := s.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write outbound sync log: %w", err)
	}
	return nil
}

// ResolvePending promotes the most recent pending outbound row for the
// booking to success or failed.
func (s *SyncLogService) ResolvePending(bookingID, status string, errorMessage *string) error {
	var entry models.SyncLog
	err := s.DB.
		Where("booking_id = ? AND direction = ? AND status = ?",
			bookingID, models.SyncDirectionOutbound, models.SyncStatusPending).
		Order("created_at DESC").
		First(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to find pending sync log: %w", err)
	}

	updates := map[string]interface{}{"status": status, "error_message": errorMessage}
	if err := s.DB.Model(&entry).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to resolve pending sync log: %w", err)
	}
	return nil
}

// SyncLogFilters narrows the dashboard sync-history listing.
type SyncLogFilters struct {
	WebsiteID string
	BookingID string
	Direction string
	Status    string
}

// List returns sync history, newest first, with the total row count for
// pagination.
func (s *SyncLogService) List(filters SyncLogFilters, page, perPage int) ([]models.SyncLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := s.DB.Model(&models.SyncLog{})
	if filters.WebsiteID != "" {
		query = query.Where("website_id = ?", filters.WebsiteID)
	}
	if filters.BookingID != "" {
		query = query.Where("booking_id = ?", filters.BookingID)
	}
	if filters.Direction != "" {
		query = query.Where("direction = ?", filters.Direction)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sync logs: %w", err)
	}

	var logs []models.SyncLog
	err := query.
		Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sync logs: %w", err)
	}
	return logs, total, nil
}
