package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"onebooking-backend/models"
	"onebooking-backend/utils"

	"gorm.io/gorm"
)

// WebsiteService manages registered source websites and their
// credentials.
type WebsiteService struct {
	DB *gorm.DB
}

func NewWebsiteService(db *gorm.DB) *WebsiteService {
	return &WebsiteService{DB: db}
}

func (s *WebsiteService) List() ([]models.Website, error) {
	var websites []models.Website
	if err := s.DB.Order("created_at DESC").Find(&websites).Error; err != nil {
		return nil, fmt.Errorf("failed to list websites: %w", err)
	}
	return websites, nil
}

func (s *WebsiteService) GetByID(id string) (*models.Website, error) {
	var website models.Website
	if err := s.DB.First(&website, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWebsiteNotFound
		}
		return nil, fmt.Errorf("failed to find website: %w", err)
	}
	return &website, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a website id from its display name.
func Slugify(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

// keyPrefix builds the short api-key prefix from the slug, e.g.
// "phuket-golf" -> "pg".
func keyPrefix(id string) string {
	var prefix strings.Builder
	for _, part := range strings.Split(id, "-") {
		if part != "" {
			prefix.WriteByte(part[0])
		}
	}
	if prefix.Len() == 0 {
		return "ob"
	}
	return prefix.String()
}

// CreateWebsiteInput carries the admin-supplied fields; credentials are
// always generated here, never accepted from the caller.
type CreateWebsiteInput struct {
	ID         string
	Name       string
	Domain     string
	WebhookURL *string
	LogoURL    *string
}

// Create registers a website with a fresh API key and webhook secret.
func (s *WebsiteService) Create(input CreateWebsiteInput) (*models.Website, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = Slugify(input.Name)
	}
	if id == "" {
		return nil, fmt.Errorf("website id could not be derived")
	}

	apiKey, err := utils.GenerateAPIKey(keyPrefix(id))
	if err != nil {
		return nil, fmt.Errorf("failed to generate api key: %w", err)
	}
	secret, err := utils.GenerateWebhookSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate webhook secret: %w", err)
	}

	website := models.Website{
		ID:            id,
		Name:          input.Name,
		Domain:        input.Domain,
		APIKey:        apiKey,
		WebhookURL:    input.WebhookURL,
		WebhookSecret: &secret,
		LogoURL:       input.LogoURL,
		IsActive:      true,
	}
	if err := s.DB.Create(&website).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return nil, fmt.Errorf("website %q already exists: %w", id, gorm.ErrDuplicatedKey)
		}
		return nil, fmt.Errorf("failed to create website: %w", err)
	}
	return &website, nil
}

// UpdateWebsiteInput mutates the admin-editable fields. The API key is
// not among them; it only changes through RotateAPIKey.
type UpdateWebsiteInput struct {
	Name          *string
	Domain        *string
	WebhookURL    *string
	WebhookSecret *string
	LogoURL       *string
	IsActive      *bool
}

func (s *WebsiteService) Update(id string, input UpdateWebsiteInput) (*models.Website, error) {
	website, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Domain != nil {
		updates["domain"] = *input.Domain
	}
	if input.WebhookURL != nil {
		updates["webhook_url"] = *input.WebhookURL
	}
	if input.WebhookSecret != nil {
		updates["webhook_secret"] = *input.WebhookSecret
	}
	if input.LogoURL != nil {
		updates["logo_url"] = *input.LogoURL
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return website, nil
	}

	if err := s.DB.Model(website).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update website: %w", err)
	}
	return s.GetByID(id)
}

// RotateAPIKey replaces the website's API key in a single column
// update. The old key stops authenticating the moment the update
// commits; there is no grace period.
func (s *WebsiteService) RotateAPIKey(id string) (string, error) {
	website, err := s.GetByID(id)
	if err != nil {
		return "", err
	}

	newKey, err := utils.GenerateAPIKey(keyPrefix(website.ID))
	if err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}

	if err := s.DB.Model(website).Update("api_key", newKey).Error; err != nil {
		return "", fmt.Errorf("failed to rotate api key: %w", err)
	}
	return newKey, nil
}
