// controllers/admin_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"onebooking-backend/services"
	"onebooking-backend/utils"

	"github.com/gin-gonic/gin"
)

// AdminController holds superadmin-only maintenance actions.
type AdminController struct {
	BookingSvc *services.BookingService
	WebhookSvc *services.WebhookService
}

func NewAdminController(bookingSvc *services.BookingService, webhookSvc *services.WebhookService) *AdminController {
	return &AdminController{BookingSvc: bookingSvc, WebhookSvc: webhookSvc}
}

type testWebhookPayload struct {
	WebsiteID string   `json:"website_id"`
	BookingID string   `json:"booking_id"`
	Fields    []string `json:"fields"`
}

// TestWebhook exercises a website's webhook endpoint against a real
// booking, defaulting to a status-only diff.
func (adc *AdminController) TestWebhook(c *gin.Context) {
	var payload testWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "Invalid JSON payload", utils.CodeInvalidPayload)
		return
	}
	if strings.TrimSpace(payload.WebsiteID) == "" || strings.TrimSpace(payload.BookingID) == "" {
		utils.JSONCodedError(c, http.StatusBadRequest,
			"Missing required fields: website_id, booking_id", utils.CodeInvalidPayload)
		return
	}

	booking, err := adc.BookingSvc.GetByID(payload.BookingID)
	if err != nil || booking.WebsiteID != payload.WebsiteID {
		if err != nil && !errors.Is(err, services.ErrBookingNotFound) {
			log.Printf("Test webhook error: %v", err)
			utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
			return
		}
		utils.JSONCodedError(c, http.StatusNotFound, "Booking not found", utils.CodeNotFound)
		return
	}

	fields := payload.Fields
	if len(fields) == 0 {
		fields = []string{"status"}
	}

	outcome := adc.WebhookSvc.SendUpdateWebhook(booking, &booking.Website, fields, actorIdentity(c))
	if outcome == services.DeliveryDelivered {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Test webhook sent successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "message": "Webhook delivery failed"})
}
