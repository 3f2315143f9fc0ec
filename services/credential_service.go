package services

import (
	"errors"
	"fmt"
	"strings"

	"onebooking-backend/models"

	"gorm.io/gorm"
)

// CredentialService resolves source API keys to website identities.
type CredentialService struct {
	DB *gorm.DB
}

func NewCredentialService(db *gorm.DB) *CredentialService {
	return &CredentialService{DB: db}
}

// ResolveAPIKey returns the active website owning the key. Lookup is
// exact-match only; inactive websites never authenticate. No side
// effects, so a failed resolution leaves nothing to audit.
func (s *CredentialService) ResolveAPIKey(apiKey string) (*models.Website, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	var website models.Website
	err := s.DB.Where("api_key = ? AND is_active = ?", apiKey, true).First(&website).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to resolve api key: %w", err)
	}
	return &website, nil
}
