package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SyncDirectionInbound  = "inbound"
	SyncDirectionOutbound = "outbound"

	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
	SyncStatusPending = "pending"
)

// SyncLog is the append-only audit trail of every sync attempt, inbound
// and outbound. Outbound deliveries write a pending row before the HTTP
// call and promote it to success/failed afterwards, so an in-flight
// delivery is visible without a retry queue. Rows are never deleted;
// booking/website references are weak (nullable, no FK constraint).
type SyncLog struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	BookingID    *string        `gorm:"column:booking_id;size:36;index" json:"booking_id"`
	WebsiteID    *string        `gorm:"column:website_id;size:64;index" json:"website_id"`
	Direction    string         `gorm:"size:16;index" json:"direction"`
	EventType    string         `gorm:"column:event_type;size:64;index" json:"event_type"`
	Payload      datatypes.JSON `json:"payload"`
	Status       string         `gorm:"size:16;index" json:"status"`
	ErrorMessage *string        `gorm:"column:error_message;type:text" json:"error_message"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
}
