package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yafi/support-backend/internal/api/dto"
	"github.com/yafi/support-backend/internal/auth"
	"github.com/yafi/support-backend/internal/service"
	apperrors "github.com/yafi/support-backend/pkg/util/errorutil"
)

// StatsHandler exposes the reporting endpoints.
type StatsHandler struct {
	service *service.StatsService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{service: statsService}
}

// AgentDashboard GET /stats/agent/dashboard.
func (h *StatsHandler) AgentDashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	dashboard, err := h.service.AgentDashboard(c.Context(), principal.User, queryInt(c, "year"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentDashboardResponse(dashboard)})
}

// AgentReport GET /stats/admin/agents/:id.
func (h *StatsHandler) AgentReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.AgentReport(c.Context(), principal.User, c.Params("id"), queryInt(c, "year"), queryInt(c, "month"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentReportResponse(report)})
}

// AgentsReview GET /stats/admin/agents/review.
func (h *StatsHandler) AgentsReview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	review, err := h.service.AgentsReview(c.Context(), principal.User, queryInt(c, "year"), queryInt(c, "month"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentsReviewResponse(review)})
}

// GlobalReport GET /stats/admin/global.
func (h *StatsHandler) GlobalReport(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	report, err := h.service.GlobalReport(c.Context(), principal.User, queryInt(c, "year"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewGlobalReportResponse(report)})
}

func queryInt(c *fiber.Ctx, name string) int {
	v, _ := strconv.Atoi(c.Query(name))
	return v
}
