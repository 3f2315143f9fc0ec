package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateAPIKey returns a new source credential, e.g. "pg_sk_live_<48 hex>".
func GenerateAPIKey(prefix string) (string, error) {
	suffix, err := randomHex(24)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_sk_live_%s", prefix, suffix), nil
}

// GenerateWebhookSecret returns a signing secret, e.g. "whsec_<48 hex>".
func GenerateWebhookSecret() (string, error) {
	suffix, err := randomHex(24)
	if err != nil {
		return "", err
	}
	return "whsec_" + suffix, nil
}
