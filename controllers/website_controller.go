// controllers/website_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"onebooking-backend/services"
	"onebooking-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WebsiteController struct {
	WebsiteSvc *services.WebsiteService
}

func NewWebsiteController(websiteSvc *services.WebsiteService) *WebsiteController {
	return &WebsiteController{WebsiteSvc: websiteSvc}
}

type createWebsitePayload struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Domain     string  `json:"domain"`
	WebhookURL *string `json:"webhook_url"`
	LogoURL    *string `json:"logo_url"`
}

type updateWebsitePayload struct {
	Name          *string `json:"name"`
	Domain        *string `json:"domain"`
	WebhookURL    *string `json:"webhook_url"`
	WebhookSecret *string `json:"webhook_secret"`
	LogoURL       *string `json:"logo_url"`
	IsActive      *bool   `json:"is_active"`
}

func (wc *WebsiteController) GetWebsites(c *gin.Context) {
	websites, err := wc.WebsiteSvc.List()
	if err != nil {
		log.Printf("List websites error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, websites)
}

func (wc *WebsiteController) GetWebsite(c *gin.Context) {
	website, err := wc.WebsiteSvc.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrWebsiteNotFound) {
			utils.JSONCodedError(c, http.StatusNotFound, "Website not found", utils.CodeNotFound)
			return
		}
		log.Printf("Get website error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, website)
}

func (wc *WebsiteController) CreateWebsite(c *gin.Context) {
	var payload createWebsitePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "Invalid JSON payload", utils.CodeInvalidPayload)
		return
	}
	if strings.TrimSpace(payload.Name) == "" || strings.TrimSpace(payload.Domain) == "" {
		utils.JSONCodedError(c, http.StatusBadRequest,
			"Missing required fields: name, domain", utils.CodeInvalidPayload)
		return
	}

	website, err := wc.WebsiteSvc.Create(services.CreateWebsiteInput{
		ID:         payload.ID,
		Name:       payload.Name,
		Domain:     payload.Domain,
		WebhookURL: payload.WebhookURL,
		LogoURL:    payload.LogoURL,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.JSONCodedError(c, http.StatusConflict,
				"Website with this ID already exists", utils.CodeDuplicate)
			return
		}
		log.Printf("Create website error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	utils.JSONMessage(c, http.StatusCreated, website, "Website registered successfully")
}

func (wc *WebsiteController) UpdateWebsite(c *gin.Context) {
	var payload updateWebsitePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONCodedError(c, http.StatusBadRequest, "Invalid JSON payload", utils.CodeInvalidPayload)
		return
	}

	website, err := wc.WebsiteSvc.Update(c.Param("id"), services.UpdateWebsiteInput{
		Name:          payload.Name,
		Domain:        payload.Domain,
		WebhookURL:    payload.WebhookURL,
		WebhookSecret: payload.WebhookSecret,
		LogoURL:       payload.LogoURL,
		IsActive:      payload.IsActive,
	})
	if err != nil {
		if errors.Is(err, services.ErrWebsiteNotFound) {
			utils.JSONCodedError(c, http.StatusNotFound, "Website not found", utils.CodeNotFound)
			return
		}
		log.Printf("Update website error: %v", err)
		utils.JSONCodedError(c, http.StatusInternalServerError, "Internal server error", utils.CodeServerError)
		return
	}
	utils.JSONMessage(c, http.StatusOK, website, "Website updated successfully")
}

// RegenerateKey rotates the website's API key. The response is the only
// place the new key is shown in full.
func (wc *WebsiteController) RegenerateKey(c *gin.Context) {
	newKey, err := wc.WebsiteSvc.RotateAPIKey(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrWebsiteNotFound) {
			utils.JSONError(c, http.StatusNotFound, "Website not found")
			return
		}
		log.Printf("Regenerate key error: %v", err)
		utils.JSONError(c, http.StatusInternalServerError, "Failed to update API key")
		return
	}
	utils.JSONMessage(c, http.StatusOK, gin.H{"api_key": newKey}, "API key regenerated successfully")
}
