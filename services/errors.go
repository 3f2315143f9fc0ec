package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrMissingAPIKey    = errors.New("missing_api_key")
	ErrInvalidAPIKey    = errors.New("invalid_or_inactive_api_key")
	ErrDuplicateBooking = errors.New("duplicate_booking")
	ErrBookingNotFound  = errors.New("booking_not_found")
	ErrWebsiteNotFound  = errors.New("website_not_found")
	ErrNoWebhookURL     = errors.New("no_webhook_url")
)

// ValidationError carries every missing required field of an inbound
// sync payload, not just the first one.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Missing required fields: %s", strings.Join(e.Missing, ", "))
}

// isDuplicateKeyErr matches unique-constraint violations: MySQL error
// 1062, with a message fallback covering SQLite's "UNIQUE constraint
// failed".
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
