package models

import "time"

// Website is a registered source site that pushes bookings into the
// dashboard and may receive sync-back webhooks.
type Website struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"` // stable slug, e.g. "phuket-golf"
	Name          string    `gorm:"size:255" json:"name"`
	Domain        string    `gorm:"size:255" json:"domain"`
	APIKey        string    `gorm:"column:api_key;uniqueIndex;size:128" json:"api_key"`
	WebhookURL    *string   `gorm:"column:webhook_url;size:500" json:"webhook_url"`
	WebhookSecret *string   `gorm:"column:webhook_secret;size:128" json:"webhook_secret"`
	LogoURL       *string   `gorm:"column:logo_url;size:500" json:"logo_url"`
	IsActive      bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
