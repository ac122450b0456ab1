package handlers

import (
	"kas-kelas/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService DashboardUseCase
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetDashboard returns dashboard data for the caller
// @Summary Dashboard
// @Description Monthly cash flow, open bill counts and, for the treasurer and administrator, the member count
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	data, err := h.dashboardService.GetDashboard(c.Context(), principal(c))
	if err != nil {
		return handleError(c, err, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
