package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/config"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// BotReply is a single utterance coming back from the conversational engine.
type BotReply struct {
	RecipientID string `json:"recipient_id"`
	Text        string `json:"text"`
}

// ChatbotService relays user messages to the Rasa webhook and returns the
// bot's replies in order.
type ChatbotService struct {
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewChatbotService constructs the relay.
func NewChatbotService(cfg config.Config, logger *zap.Logger) *ChatbotService {
	return &ChatbotService{
		webhookURL: cfg.Chatbot.WebhookURL,
		client:     &http.Client{Timeout: cfg.Chatbot.Timeout()},
		logger:     logger,
	}
}

// Relay forwards one message for the given sender and returns the replies.
// Engine failures surface as domain errors; the caller decides how to degrade.
func (s *ChatbotService) Relay(ctx context.Context, senderID, message string) ([]BotReply, error) {
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	payload, err := json.Marshal(map[string]string{
		"sender":  senderID,
		"message": message,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("chatbot webhook unreachable", zap.String("url", s.webhookURL), zap.Error(err))
		return nil, apperrors.NewDomainError("CHATBOT_UNAVAILABLE", "conversational engine unavailable", http.StatusBadGateway, nil)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("chatbot webhook error", zap.Int("status", resp.StatusCode))
		return nil, apperrors.NewDomainError("CHATBOT_UNAVAILABLE",
			fmt.Sprintf("conversational engine returned status %d", resp.StatusCode), http.StatusBadGateway, nil)
	}

	var replies []BotReply
	if err := json.NewDecoder(resp.Body).Decode(&replies); err != nil {
		return nil, apperrors.MapError(err)
	}
	return replies, nil
}
