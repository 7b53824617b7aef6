package handler

import (
	"errors"
	"net/http"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	publisher     websocket.EventPublisher
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, publisher websocket.EventPublisher) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		publisher:     publisher,
	}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	Category      string `json:"category"`
	TargetAmount  string `json:"targetAmount"`
	MonthYear     string `json:"monthYear"`
	AllowRollover bool   `json:"allowRollover"`
}

func (r *BudgetRequest) toInput() (service.BudgetInput, []ValidationError) {
	target, err := decimal.NewFromString(r.TargetAmount)
	if err != nil {
		return service.BudgetInput{}, []ValidationError{
			{Field: "targetAmount", Message: "Must be a valid decimal number"},
		}
	}
	return service.BudgetInput{
		Category:      r.Category,
		TargetAmount:  target,
		MonthYear:     r.MonthYear,
		AllowRollover: r.AllowRollover,
	}, nil
}

// CreateBudget handles POST /budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := req.toInput()
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	budget, err := h.budgetService.CreateBudget(input)
	if err != nil {
		if validationErrs := mapBudgetValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	h.publisher.Publish(websocket.TopicData, websocket.BudgetCreated(budget))
	return c.JSON(http.StatusCreated, budget)
}

// GetBudgets handles GET /budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	budgets, err := h.budgetService.ListBudgets()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list budgets")
		return NewInternalError(c, "Failed to list budgets")
	}
	return c.JSON(http.StatusOK, budgets)
}

// GetBudgetsForMonth handles GET /budgets/month/:monthYear, returning
// budgets with spent amounts and rollover applied
func (h *BudgetHandler) GetBudgetsForMonth(c echo.Context) error {
	monthYear := c.Param("monthYear")
	details, err := h.budgetService.BudgetsForMonth(monthYear)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMonthKey) {
			return NewValidationError(c, "Invalid month", []ValidationError{
				{Field: "monthYear", Message: "Must be in YYYY-MM format"},
			})
		}
		log.Error().Err(err).Str("month_year", monthYear).Msg("Failed to compute budgets for month")
		return NewInternalError(c, "Failed to compute budgets")
	}
	return c.JSON(http.StatusOK, details)
}

// UpdateBudget handles PUT /budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	id := c.Param("id")

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := req.toInput()
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	budget, err := h.budgetService.UpdateBudget(id, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if validationErrs := mapBudgetValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Str("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	h.publisher.Publish(websocket.TopicData, websocket.BudgetUpdated(budget))
	return c.JSON(http.StatusOK, budget)
}

// DeleteBudget handles DELETE /budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	id := c.Param("id")
	if err := h.budgetService.DeleteBudget(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Str("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	h.publisher.Publish(websocket.TopicData, websocket.BudgetDeleted(map[string]string{"id": id}))
	return c.NoContent(http.StatusNoContent)
}

func mapBudgetValidation(err error) []ValidationError {
	switch {
	case errors.Is(err, domain.ErrCategoryRequired):
		return []ValidationError{{Field: "category", Message: "Category is required"}}
	case errors.Is(err, domain.ErrInvalidAmount):
		return []ValidationError{{Field: "targetAmount", Message: "Target amount must be positive"}}
	case errors.Is(err, domain.ErrInvalidMonthKey):
		return []ValidationError{{Field: "monthYear", Message: "Must be in YYYY-MM format"}}
	default:
		return nil
	}
}
