// controllers/sync_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"

	"onebooking-backend/services"
	"onebooking-backend/utils"

	"github.com/gin-gonic/gin"
)

// SyncController is the inbound endpoint source websites push booking
// events to.
type SyncController struct {
	Credentials *services.CredentialService
	SyncSvc     *services.SyncService
}

func NewSyncController(credentials *services.CredentialService, syncSvc *services.SyncService) *SyncController {
	return &SyncController{Credentials: credentials, SyncSvc: syncSvc}
}

func apiKeyFromHeaders(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	return c.GetHeader("x-api-key")
}

// HandleSync processes one booking event. Auth and validation failures
// are terminal and unlogged; accepted transitions produce exactly one
// inbound sync log row.
func (sc *SyncController) HandleSync(c *gin.Context) {
	website, err := sc.Credentials.ResolveAPIKey(apiKeyFromHeaders(c))
	if err != nil {
		if errors.Is(err, services.ErrMissingAPIKey) || errors.Is(err, services.ErrInvalidAPIKey) {
			utils.JSONCodedError(c, http.StatusUnauthorized, "Invalid API key", utils.CodeAuthFailed)
			return
		}
		log.Printf("Sync auth error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	var payload services.SyncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "Invalid JSON payload", utils.CodeInvalidPayload)
		return
	}

	result, err := sc.SyncSvc.ProcessEvent(website, &payload)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.JSONCodedError(c, http.StatusBadRequest, verr.Error(), utils.CodeInvalidPayload)
		case errors.Is(err, services.ErrDuplicateBooking):
			utils.JSONCodedError(c, http.StatusConflict,
				"Booking already exists. Use booking.updated event to update.", utils.CodeDuplicateBooking)
		default:
			log.Printf("Sync error: %v", err)
			utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		}
		return
	}

	status := http.StatusOK
	if payload.Event == services.EventBookingCreated {
		status = http.StatusCreated
	}
	utils.JSONMessage(c, status, gin.H{"booking_id": result.BookingID}, "Booking synced successfully")
}
