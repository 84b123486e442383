package utils

import (
	"context"
	"fmt"

	"github.com/nahidhasan/feedpulse/pkg/logger"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP and app settings passed in from app config.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AppURL       string
	FromEmail    string
}

// SendWelcomeEmail sends a short welcome email after registration.
// Failures are logged and returned but registration itself never depends on them.
func SendWelcomeEmail(ctx context.Context, config EmailConfig, email, username string, log *logger.Logger) error {
	htmlBody := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Welcome to FeedPulse, @%s!</h2>
  <p>Your account is ready. Jump in, follow a few people, and say hello.</p>
  <p>Tip: mention someone with <b>@username</b> in a post or comment and they will be notified.</p>
  <p><a href="%s">Open FeedPulse</a></p>
</body>
</html>`, username, config.AppURL)

	m := gomail.NewMessage()
	m.SetHeader("From", config.FromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to FeedPulse")
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)
	if err := d.DialAndSend(m); err != nil {
		log.Warn(ctx).WithMeta(Map{"email": email, "error": err.Error()}).Logs("Failed to send welcome email")
		return WrapError(err, ErrInternalServerError.Code, "Failed to send welcome email")
	}

	log.Info(ctx).WithMeta(Map{"email": email}).Logs("Welcome email sent")
	return nil
}
