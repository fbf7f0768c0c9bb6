package notify

import (
	"context"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/config"
)

// SMSSender delivers a text message to a single phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// NewSMSSender returns a Twilio-backed sender, or a skip-with-warning sender
// when credentials are missing. Recipient numbers are normalized before
// dispatch.
func NewSMSSender(cfg config.SMSConfig, logger *zap.Logger) SMSSender {
	if !cfg.Enabled() {
		logger.Warn("twilio credentials not configured; SMS channel disabled")
		return &disabledSMSSender{logger: logger}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &twilioSMSSender{client: client, from: cfg.FromNumber}
}

type twilioSMSSender struct {
	client *twilio.RestClient
	from   string
}

func (s *twilioSMSSender) Send(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(NormalizePhone(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}

type disabledSMSSender struct {
	logger *zap.Logger
}

func (s *disabledSMSSender) Send(_ context.Context, to, _ string) error {
	s.logger.Warn("SMS skipped: channel not configured", zap.String("to", to))
	return nil
}
