package notify

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/yafi/support-backend/internal/config"
)

// EmailSender delivers a message to one or more recipients. Implementations
// are fire-and-forget from the caller's perspective; failures are returned
// for logging only.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// NewEmailSender returns an SMTP-backed sender, or a log-only sender when no
// SMTP host is configured.
func NewEmailSender(cfg config.MailConfig, logger *zap.Logger) EmailSender {
	if cfg.Host == "" {
		logger.Warn("MAIL_SMTP_HOST not configured; emails will be logged only")
		return &logEmailSender{logger: logger}
	}
	return &smtpEmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type smtpEmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *smtpEmailSender) Send(_ context.Context, to []string, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

type logEmailSender struct {
	logger *zap.Logger
}

func (s *logEmailSender) Send(_ context.Context, to []string, subject, body string) error {
	s.logger.Info("email (log only)",
		zap.Strings("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}
