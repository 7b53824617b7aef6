package handler

import (
	"errors"
	"net/http"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler serves aggregated monthly figures
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetMonthSummary handles GET /dashboard/summary/:monthYear
func (h *DashboardHandler) GetMonthSummary(c echo.Context) error {
	monthYear := c.Param("monthYear")
	summary, err := h.dashboardService.MonthSummary(monthYear)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMonthKey) {
			return NewValidationError(c, "Invalid month", []ValidationError{
				{Field: "monthYear", Message: "Must be in YYYY-MM format"},
			})
		}
		log.Error().Err(err).Str("month_year", monthYear).Msg("Failed to compute month summary")
		return NewInternalError(c, "Failed to compute month summary")
	}
	return c.JSON(http.StatusOK, summary)
}
