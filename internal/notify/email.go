package notify

import (
	"fmt"
	"net/smtp"
	"os"

	"go.uber.org/zap"

	"HandyHire-backend/internal/logger"
)

// SMTPDispatcher delivers notifications over SMTP. Every Send runs in its own
// goroutine; delivery errors are logged and dropped.
type SMTPDispatcher struct {
	host     string
	port     string
	from     string
	username string
	password string
}

// NewSMTPDispatcher reads SMTP_HOST, SMTP_PORT, SMTP_FROM, SMTP_USERNAME and
// SMTP_PASSWORD from the environment.
func NewSMTPDispatcher() *SMTPDispatcher {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPDispatcher{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		from:     os.Getenv("SMTP_FROM"),
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
	}
}

// Send delivers the notification asynchronously.
func (d *SMTPDispatcher) Send(kind Kind, recipient string, payload Payload) {
	go func() {
		subject, body := render(kind, payload)
		msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", d.from, recipient, subject, body)

		var auth smtp.Auth
		if d.username != "" {
			auth = smtp.PlainAuth("", d.username, d.password, d.host)
		}

		addr := fmt.Sprintf("%s:%s", d.host, d.port)
		if err := smtp.SendMail(addr, auth, d.from, []string{recipient}, []byte(msg)); err != nil {
			logger.Get().Warn("notification delivery failed",
				zap.String("kind", string(kind)),
				zap.String("recipient", recipient),
				zap.Error(err),
			)
			return
		}
		logger.Get().Info("notification delivered",
			zap.String("kind", string(kind)),
			zap.String("recipient", recipient),
		)
	}()
}

func render(kind Kind, payload Payload) (subject string, body string) {
	switch kind {
	case KindApplicationReceived:
		subject = fmt.Sprintf("New application for %q", payload["posting_title"])
		body = fmt.Sprintf("%s has applied to your %q posting. Open your inbox to reply.",
			payload["applicant_name"], payload["posting_title"])
	case KindApplicationAccepted:
		subject = fmt.Sprintf("Your application for %q is being reviewed", payload["posting_title"])
		body = fmt.Sprintf("%s is reviewing your application. You can message them from your inbox.",
			payload["employer_name"])
	case KindNewMessage:
		subject = "You have a new message"
		body = fmt.Sprintf("%s sent you a message. Open your inbox to read it.", payload["sender_name"])
	default:
		subject = "Notification"
		body = "You have a new notification."
	}
	return subject, body
}
