// Package email sends purchase receipts over SMTP.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/gomail.v2"

	"github.com/orris-inc/orrisdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/config"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// ErrEmailServiceNotConfigured is returned when email is disabled or no SMTP
// host is set.
var ErrEmailServiceNotConfigured = errors.New("email service not configured")

const receiptDateLayout = "02 Jan 2006"

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPReceiptSender struct {
	config config.EmailConfig
	dialer dialer
	policy *bluemonday.Policy
	logger logger.Interface
}

var _ usecases.ReceiptSender = (*SMTPReceiptSender)(nil)

// NewSMTPReceiptSender returns nil when email is disabled so the workflow
// skips receipts entirely.
func NewSMTPReceiptSender(cfg config.EmailConfig, log logger.Interface) *SMTPReceiptSender {
	if !cfg.Enabled || cfg.SMTPHost == "" {
		log.Infow("email receipts disabled")
		return nil
	}
	return newSMTPReceiptSender(cfg, gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword), log)
}

func newSMTPReceiptSender(cfg config.EmailConfig, d dialer, log logger.Interface) *SMTPReceiptSender {
	return &SMTPReceiptSender{
		config: cfg,
		dialer: d,
		policy: bluemonday.StrictPolicy(),
		logger: log,
	}
}

// SendReceipt mails the subscription summary. The SMTP exchange does not
// observe ctx; gomail has no cancellation hook.
func (s *SMTPReceiptSender) SendReceipt(ctx context.Context, r usecases.Receipt) error {
	if s == nil || s.dialer == nil {
		return ErrEmailServiceNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := biztime.FormatInBizTimezone(r.StartDate, receiptDateLayout)
	end := biztime.FormatInBizTimezone(r.EndDate, receiptDateLayout)

	subject := fmt.Sprintf("Your %s subscription is active", r.PlanName)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Thank you for your purchase!</h2>
			<p>Your subscription is now active.</p>
			<table>
				<tr><td>Subscription</td><td>%s</td></tr>
				<tr><td>Plan</td><td>%s</td></tr>
				<tr><td>Price</td><td>%s</td></tr>
				<tr><td>Starts</td><td>%s</td></tr>
				<tr><td>Expires</td><td>%s</td></tr>
			</table>
			<p>You will get a reminder before it expires.</p>
		</body>
		</html>
	`, s.policy.Sanitize(r.SubscriptionSID), s.policy.Sanitize(r.PlanName), s.policy.Sanitize(r.Price), start, end)

	plainBody := fmt.Sprintf(`
Thank you for your purchase!

Your subscription is now active.

Subscription: %s
Plan: %s
Price: %s
Starts: %s
Expires: %s

You will get a reminder before it expires.
	`, r.SubscriptionSID, r.PlanName, r.Price, start, end)

	if err := s.sendEmail(r.To, subject, htmlBody, plainBody); err != nil {
		return err
	}
	s.logger.Infow("receipt email sent", "subscription_sid", r.SubscriptionSID, "guild_id", r.GuildID)
	return nil
}

func (s *SMTPReceiptSender) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
