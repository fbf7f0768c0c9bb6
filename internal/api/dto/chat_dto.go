package dto

import "github.com/yafi/support-backend/internal/service"

// ChatRequest payload relayed to the conversational engine.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatReplyResponse is one bot utterance.
type ChatReplyResponse struct {
	Text string `json:"text"`
}

// NewChatRepliesResponse maps bot replies in order.
func NewChatRepliesResponse(replies []service.BotReply) []ChatReplyResponse {
	out := make([]ChatReplyResponse, 0, len(replies))
	for _, r := range replies {
		out = append(out, ChatReplyResponse{Text: r.Text})
	}
	return out
}
