package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yafi/support-backend/internal/api/dto"
	"github.com/yafi/support-backend/internal/auth"
	"github.com/yafi/support-backend/internal/service"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// ChatbotHandler relays chat messages to the conversational engine.
type ChatbotHandler struct {
	service *service.ChatbotService
}

// NewChatbotHandler constructs handler.
func NewChatbotHandler(chatbotService *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{service: chatbotService}
}

// Relay POST /chatbot.
func (h *ChatbotHandler) Relay(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	replies, err := h.service.Relay(c.Context(), principal.User.ID, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewChatRepliesResponse(replies)})
}
