// controllers/synclog_controller.go
package controllers

import (
	"log"
	"net/http"
	"strconv"

	"onebooking-backend/services"
	"onebooking-backend/utils"

	"github.com/gin-gonic/gin"
)

type SyncLogController struct {
	LogSvc *services.SyncLogService
}

func NewSyncLogController(logSvc *services.SyncLogService) *SyncLogController {
	return &SyncLogController{LogSvc: logSvc}
}

// GetSyncLogs serves the dashboard sync-history page.
func (slc *SyncLogController) GetSyncLogs(c *gin.Context) {
	filters := services.SyncLogFilters{
		WebsiteID: c.Query("website_id"),
		BookingID: c.Query("booking_id"),
		Direction: c.Query("direction"),
		Status:    c.Query("status"),
	}

	page := 1
	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page = v
		}
	}
	perPage := 20
	if raw := c.Query("per_page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			perPage = v
		}
	}

	logs, total, err := slc.LogSvc.List(filters, page, perPage)
	if err != nil {
		log.Printf("List sync logs error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}

	totalPages := (total + int64(perPage) - 1) / int64(perPage)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        logs,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
	})
}
