package utils

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

// SendPickupTimeEmail tells a customer when the hotel pickup will arrive.
// When SMTP is not configured the message is mock-logged and no error is
// returned, so pickup-time edits keep working in local setups.
func SendPickupTimeEmail(recipientEmail, customerName, websiteName, bookingRef, activityDate, pickupTime string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		log.Printf("[MOCK EMAIL] pickup-time to:%s ref:%s time:%s", recipientEmail, bookingRef, pickupTime)
		return nil
	}

	safe := func(s string) string {
		return strings.ReplaceAll(strings.TrimSpace(s), "\r\n", " ")
	}
	customerName = safe(customerName)
	websiteName = safe(websiteName)
	bookingRef = safe(bookingRef)
	pickupTime = safe(pickupTime)

	from := fmt.Sprintf("%s <%s>", websiteName, smtpUser)
	to := []string{recipientEmail}
	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)

	subject := fmt.Sprintf("Pickup time confirmed for booking %s", bookingRef)
	boundary := "----=_PICKUP_EMAIL_BOUNDARY"

	plainBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Your pickup for booking %s on %s has been scheduled.\n"+
			"Pickup time: %s\n\n"+
			"Please be ready at your hotel lobby a few minutes early.\n\n"+
			"%s\n",
		customerName, bookingRef, activityDate, pickupTime, websiteName,
	)

	htmlBody := fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Pickup time confirmed</title>
<style>
body { background:#f5f7fb; font-family:Arial, Helvetica, sans-serif; color:#222; }
.container { max-width:640px; margin:20px auto; }
.card { background:#fff; border:1px solid #e6eef6; padding:24px; border-radius:8px; }
.time { font-size:28px; font-weight:bold; color:#0b74ff; }
</style>
</head>
<body>
<div class="container">
  <div class="card">
    <h2>Pickup time confirmed</h2>
    <p>Hi %s,</p>
    <p>Your pickup for booking <strong>%s</strong> on %s has been scheduled.</p>
    <p class="time">%s</p>
    <p>Please be ready at your hotel lobby a few minutes early.</p>
    <p>%s</p>
  </div>
</div>
</body>
</html>`,
		customerName, bookingRef, activityDate, pickupTime, websiteName,
	)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", recipientEmail))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plainBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(htmlBody + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	if err := smtp.SendMail(addr, auth, smtpUser, to, []byte(sb.String())); err != nil {
		log.Printf("Failed to send pickup-time email to %s: %v", recipientEmail, err)
		return err
	}

	log.Printf("Pickup-time email sent to %s", recipientEmail)
	return nil
}
