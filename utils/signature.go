package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Two webhook signing modes coexist and receivers must know which one
// their endpoint gets:
//
//   - timestamp-bound: "sha256=" + hex(HMAC-SHA256(secret, "{ts}.{payload}")),
//     sent with X-Webhook-Signature / X-Webhook-Timestamp on edit-triggered
//     webhooks. Binding the timestamp prevents replay of old signed bodies.
//   - raw digest: hex(HMAC-SHA256(secret, payload)), sent as
//     X-OneBooking-Signature on the manual sync-to-source action.
//
// Do not unify them: source integrations depend on both wire formats.

// GenerateWebhookSignature computes the timestamp-bound signature.
func GenerateWebhookSignature(payload, secret, timestamp string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "." + payload))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature checks a timestamp-bound signature. Comparison
// is constant-time; the wire format is unchanged.
func VerifyWebhookSignature(payload, signature, secret, timestamp string) bool {
	expected := GenerateWebhookSignature(payload, secret, timestamp)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignRaw computes the plain digest used by the manual sync-to-source
// path. No prefix, no timestamp.
func SignRaw(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
