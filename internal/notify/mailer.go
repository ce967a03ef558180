package notify

import (
	"errors"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// ErrMailerDisabled signals that no SMTP host is configured.
var ErrMailerDisabled = errors.New("smtp mailer not configured")

// Mailer delivers queued notification emails over SMTP.
type Mailer struct {
	cfg config.NotifyConfig
}

// NewMailer constructs a mailer from notify configuration.
func NewMailer(cfg config.NotifyConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Enabled reports whether the mailer can actually deliver.
func (m *Mailer) Enabled() bool {
	return strings.TrimSpace(m.cfg.SMTPHost) != ""
}

// Send delivers one job. Recipients are assumed normalized by the
// gateway; an empty set is a no-op.
func (m *Mailer) Send(job *Email) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}
	if len(job.Recipients) == 0 {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.EmailFrom)
	msg.SetHeader("To", job.Recipients...)
	msg.SetHeader("Subject", job.Subject)
	msg.SetBody("text/plain", job.Body)

	dialer := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUsername, m.cfg.SMTPPassword)
	return dialer.DialAndSend(msg)
}
