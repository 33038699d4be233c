package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/arman61-hub/AutoDek/internal/app/config"
	"github.com/arman61-hub/AutoDek/internal/platform/logger"
)

// Mailer sends listing notification emails over SMTP.
type Mailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
	log    logger.Logger
}

func NewMailer(cfg config.SMTPConfig, log logger.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.SenderEmail, cfg.Password),
		log:    log,
	}
}

// ListingCreated notifies the recipient that their listing went live.
func (m *Mailer) ListingCreated(toEmail, listingTitle string) error {
	if m.cfg.SenderEmail == "" || m.cfg.Password == "" {
		return fmt.Errorf("smtp sender is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.SenderEmail)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "New Listing Created")
	msg.SetBody("text/plain", "Your listing '"+listingTitle+"' has been created successfully.")

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send listing notification: %w", err)
	}
	m.log.Infof("listing notification sent to %s", toEmail)
	return nil
}
