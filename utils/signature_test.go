package utils

import (
	"strings"
	"testing"
)

func TestSignatureRoundTrip(t *testing.T) {
	payload := `{"event":"booking.updated","source_booking_id":"SRC-1"}`
	secret := "whsec_roundtrip"
	timestamp := "1717200000"

	sig := GenerateWebhookSignature(payload, secret, timestamp)
	if !strings.HasPrefix(sig, "sha256=") {
		t.Fatalf("signature must carry the sha256= prefix, got %q", sig)
	}
	if !VerifyWebhookSignature(payload, sig, secret, timestamp) {
		t.Fatalf("signature must verify against its own inputs")
	}
}

func TestSignatureRejectsAnyChangedInput(t *testing.T) {
	payload := `{"a":1}`
	secret := "whsec_x"
	timestamp := "1717200000"
	sig := GenerateWebhookSignature(payload, secret, timestamp)

	if VerifyWebhookSignature(`{"a":2}`, sig, secret, timestamp) {
		t.Fatalf("changed payload must not verify")
	}
	if VerifyWebhookSignature(payload, sig, "whsec_y", timestamp) {
		t.Fatalf("changed secret must not verify")
	}
	if VerifyWebhookSignature(payload, sig, secret, "1717200001") {
		t.Fatalf("changed timestamp must not verify")
	}
}

func TestSignatureIsDeterministic(t *testing.T) {
	a := GenerateWebhookSignature("p", "s", "1")
	b := GenerateWebhookSignature("p", "s", "1")
	if a != b {
		t.Fatalf("same inputs must produce the same signature")
	}
}

func TestRawDigestModeIsDistinct(t *testing.T) {
	payload := `{"event":"booking.updated"}`
	secret := "whsec_raw"

	raw := SignRaw(payload, secret)
	if strings.HasPrefix(raw, "sha256=") {
		t.Fatalf("raw digest must not carry a prefix")
	}
	if len(raw) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(raw))
	}

	// The two modes must never collide on the same inputs: one binds a
	// timestamp, the other does not.
	bound := GenerateWebhookSignature(payload, secret, "0")
	if strings.TrimPrefix(bound, "sha256=") == raw {
		t.Fatalf("timestamp-bound and raw digests must differ")
	}
}

func TestGenerateAPIKeyFormat(t *testing.T) {
	key, err := GenerateAPIKey("pg")
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if !strings.HasPrefix(key, "pg_sk_live_") {
		t.Fatalf("unexpected key format: %q", key)
	}
	if len(key) != len("pg_sk_live_")+48 {
		t.Fatalf("expected 48 hex chars of entropy, got %q", key)
	}

	other, err := GenerateAPIKey("pg")
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	if key == other {
		t.Fatalf("keys must be unique")
	}
}

func TestGenerateWebhookSecretFormat(t *testing.T) {
	secret, err := GenerateWebhookSecret()
	if err != nil {
		t.Fatalf("GenerateWebhookSecret: %v", err)
	}
	if !strings.HasPrefix(secret, "whsec_") {
		t.Fatalf("unexpected secret format: %q", secret)
	}
	if len(secret) != len("whsec_")+48 {
		t.Fatalf("expected 48 hex chars of entropy, got %q", secret)
	}
}
