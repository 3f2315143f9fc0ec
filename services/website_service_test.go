package services

import (
	"strings"
	"testing"
)

func TestCreateWebsiteGeneratesCredentials(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebsiteService(db)

	website, err := svc.Create(CreateWebsiteInput{Name: "Phuket Golf Tours", Domain: "phuketgolf.example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if website.ID != "phuket-golf-tours" {
		t.Fatalf("expected slug id, got %q", website.ID)
	}
	if !strings.HasPrefix(website.APIKey, "pgt_sk_live_") {
		t.Fatalf("unexpected api key format: %q", website.APIKey)
	}
	if website.WebhookSecret == nil || !strings.HasPrefix(*website.WebhookSecret, "whsec_") {
		t.Fatalf("expected generated webhook secret")
	}
	if !website.IsActive {
		t.Fatalf("new website must be active")
	}
}

func TestCreateWebsiteDuplicateID(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebsiteService(db)

	if _, err := svc.Create(CreateWebsiteInput{ID: "dup-site", Name: "One", Domain: "one.example.com"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(CreateWebsiteInput{ID: "dup-site", Name: "Two", Domain: "two.example.com"}); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestRotateAPIKeyInvalidatesOldKey(t *testing.T) {
	db := openTestDB(t)
	websiteSvc := NewWebsiteService(db)
	credSvc := NewCredentialService(db)

	website := seedWebsite(t, db, "rotate-site", nil, nil)
	oldKey := website.APIKey

	newKey, err := websiteSvc.RotateAPIKey(website.ID)
	if err != nil {
		t.Fatalf("RotateAPIKey: %v", err)
	}
	if newKey == oldKey {
		t.Fatalf("rotation must produce a new key")
	}

	if _, err := credSvc.ResolveAPIKey(oldKey); err != ErrInvalidAPIKey {
		t.Fatalf("old key must stop authenticating immediately, got %v", err)
	}
	resolved, err := credSvc.ResolveAPIKey(newKey)
	if err != nil {
		t.Fatalf("new key must authenticate: %v", err)
	}
	if resolved.ID != website.ID {
		t.Fatalf("new key resolved wrong website: %q", resolved.ID)
	}
}

func TestRotateAPIKeyUnknownWebsite(t *testing.T) {
	db := openTestDB(t)
	svc := NewWebsiteService(db)

	if _, err := svc.RotateAPIKey("ghost-site"); err != ErrWebsiteNotFound {
		t.Fatalf("expected ErrWebsiteNotFound, got %v", err)
	}
}
