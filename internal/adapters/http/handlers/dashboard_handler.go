package handlers

import (
	"finance-backoffice/internal/adapters/http/middleware"
	"finance-backoffice/internal/core/services"
	"finance-backoffice/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns dashboard data
// @Summary Dashboard
// @Description Transaction counts by status and the most recent transactions
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.Message
// @Failure 403 {object} response.Message
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.Dashboard(c.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, data)
}

// GetSummary returns dashboard summary data
// @Summary Dashboard summary
// @Description Totals and amounts by status and user counts by role (Admin only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} response.Message
// @Failure 403 {object} response.Message
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	data, err := h.dashboardService.Summary(c.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, data)
}
