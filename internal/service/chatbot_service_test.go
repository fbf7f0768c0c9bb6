package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/yafi/support-backend/internal/config"
)

func newChatbotService(url string) *ChatbotService {
	cfg := config.Config{Chatbot: config.ChatbotConfig{WebhookURL: url, TimeoutSeconds: 2}}
	return NewChatbotService(cfg, zap.NewNop())
}

func TestRelayForwardsSenderAndMessage(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode([]BotReply{
			{RecipientID: received["sender"], Text: "Hello!"},
			{RecipientID: received["sender"], Text: "How can I help?"},
		})
	}))
	defer server.Close()

	replies, err := newChatbotService(server.URL).Relay(context.Background(), "user-001", "hi")
	if err != nil {
		t.Fatalf("Relay: %v", err)
	}
	if received["sender"] != "user-001" || received["message"] != "hi" {
		t.Fatalf("forwarded payload = %v", received)
	}
	if len(replies) != 2 || replies[0].Text != "Hello!" || replies[1].Text != "How can I help?" {
		t.Fatalf("replies = %+v", replies)
	}
}

func TestRelayEngineFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newChatbotService(server.URL).Relay(context.Background(), "user-001", "hi")
	if code := domainCode(t, err); code != "CHATBOT_UNAVAILABLE" {
		t.Fatalf("code = %s, want CHATBOT_UNAVAILABLE", code)
	}
}

func TestRelayRequiresMessage(t *testing.T) {
	_, err := newChatbotService("http://127.0.0.1:1").Relay(context.Background(), "user-001", "")
	if code := domainCode(t, err); code != "VALIDATION_FAILED" {
		t.Fatalf("code = %s, want VALIDATION_FAILED", code)
	}
}
