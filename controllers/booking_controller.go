// controllers/booking_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"

	"onebooking-backend/services"
	"onebooking-backend/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	BookingSvc *services.BookingService
	WebhookSvc *services.WebhookService
}

func NewBookingController(bookingSvc *services.BookingService, webhookSvc *services.WebhookService) *BookingController {
	return &BookingController{BookingSvc: bookingSvc, WebhookSvc: webhookSvc}
}

func intQuery(c *gin.Context, key string, def int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}

// actorIdentity is the staff identity recorded on outbound webhooks.
func actorIdentity(c *gin.Context) string {
	if email := c.GetString("adminEmail"); email != "" {
		return email
	}
	return "unknown"
}

// GetBookings lists bookings with filters and pagination.
func (bc *BookingController) GetBookings(c *gin.Context) {
	filters := services.BookingFilters{
		WebsiteID: c.Query("website_id"),
		Status:    c.Query("status"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		Search:    c.Query("search"),
	}
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", 20)

	bookings, total, err := bc.BookingSvc.List(filters, page, perPage)
	if err != nil {
		log.Printf("List bookings error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	totalPages := (total + int64(perPage) - 1) / int64(perPage)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        bookings,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
	})
}

func (bc *BookingController) GetBooking(c *gin.Context) {
	booking, err := bc.BookingSvc.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONCodedError(c, http.StatusNotFound, "Booking not found", utils.CodeNotFound)
			return
		}
		log.Printf("Get booking error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// UpdateBooking applies a staff edit and pushes the diff to the source
// website. Webhook failure never fails the edit; delivery state is
// visible in the sync history instead.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	var patch services.StaffPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "Invalid JSON payload", utils.CodeInvalidPayload)
		return
	}

	booking, changedFields, err := bc.BookingSvc.ApplyStaffEdit(c.Param("id"), &patch)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONCodedError(c, http.StatusNotFound, "Booking not found", utils.CodeNotFound)
			return
		}
		log.Printf("Update booking error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	if len(changedFields) == 0 {
		utils.JSONMessage(c, http.StatusOK, booking, "No changes detected")
		return
	}

	bc.WebhookSvc.SendUpdateWebhook(booking, &booking.Website, changedFields, actorIdentity(c))

	utils.JSONMessage(c, http.StatusOK, booking, "Booking updated successfully")
}

var pickupTimePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

type pickupTimePayload struct {
	PickupTime string `json:"pickup_time"`
	SendEmail  bool   `json:"send_email"`
}

// SetPickupTime stores the pickup time and optionally emails the
// customer.
func (bc *BookingController) SetPickupTime(c *gin.Context) {
	var payload pickupTimePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "Invalid JSON payload", utils.CodeInvalidPayload)
		return
	}
	if !pickupTimePattern.MatchString(payload.PickupTime) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid pickup time format. Use HH:MM")
		return
	}

	booking, err := bc.BookingSvc.SetPickupTime(c.Param("id"), payload.PickupTime)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONCodedError(c, http.StatusNotFound, "Booking not found", utils.CodeNotFound)
			return
		}
		log.Printf("Set pickup time error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	emailSent := false
	if payload.SendEmail {
		err := utils.SendPickupTimeEmail(
			booking.CustomerEmail, booking.CustomerName, booking.Website.Name,
			booking.BookingRef, booking.ActivityDate, payload.PickupTime,
		)
		emailSent = err == nil
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"pickup_time": payload.PickupTime,
		"email_sent":  emailSent,
	})
}

// SyncToSource replays the booking's current state to its source
// website. Unlike edit-triggered webhooks, this manual action reports
// delivery failure to the caller.
func (bc *BookingController) SyncToSource(c *gin.Context) {
	booking, err := bc.BookingSvc.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Booking not found")
			return
		}
		log.Printf("Sync to source error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	outcome, err := bc.WebhookSvc.SyncToSource(booking, &booking.Website, actorIdentity(c))
	if errors.Is(err, services.ErrNoWebhookURL) {
		utils.JSONError(c, http.StatusBadRequest, "Website has no webhook URL configured")
		return
	}
	if err != nil {
		log.Printf("Sync to source error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	if outcome != services.DeliveryDelivered {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to sync changes to source website")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Changes synced to source website"})
}

// GetStats serves the dashboard home page summary.
func (bc *BookingController) GetStats(c *gin.Context) {
	stats, err := bc.BookingSvc.Stats()
	if err != nil {
		log.Printf("Stats error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}
