package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecurringHandler handles recurring transaction template HTTP requests
type RecurringHandler struct {
	recurringService *service.RecurringService
	publisher        websocket.EventPublisher
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(recurringService *service.RecurringService, publisher websocket.EventPublisher) *RecurringHandler {
	return &RecurringHandler{
		recurringService: recurringService,
		publisher:        publisher,
	}
}

// RecurringRequest represents the create/update recurring template request
type RecurringRequest struct {
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Frequency   string   `json:"frequency"`
	StartDate   string   `json:"startDate"`
	EndDate     *string  `json:"endDate,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

func (r *RecurringRequest) toInput() (service.CreateRecurringInput, []ValidationError) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return service.CreateRecurringInput{}, []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		}
	}

	startDate, err := domain.ParseDate(r.StartDate)
	if err != nil {
		return service.CreateRecurringInput{}, []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		}
	}

	var endDate *domain.Date
	if r.EndDate != nil && *r.EndDate != "" {
		d, err := domain.ParseDate(*r.EndDate)
		if err != nil {
			return service.CreateRecurringInput{}, []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			}
		}
		endDate = &d
	}

	return service.CreateRecurringInput{
		Description: r.Description,
		Amount:      amount,
		Type:        domain.TransactionType(r.Type),
		Category:    r.Category,
		Frequency:   domain.Frequency(r.Frequency),
		StartDate:   startDate,
		EndDate:     endDate,
		Tags:        r.Tags,
	}, nil
}

// CreateRecurring handles POST /recurring
func (h *RecurringHandler) CreateRecurring(c echo.Context) error {
	var req RecurringRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := req.toInput()
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	recurring, err := h.recurringService.CreateRecurring(input)
	if err != nil {
		if validationErrs := mapRecurringValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Msg("Failed to create recurring template")
		return NewInternalError(c, "Failed to create recurring template")
	}

	h.publisher.Publish(websocket.TopicData, websocket.RecurringCreated(recurring))
	return c.JSON(http.StatusCreated, recurring)
}

// GetRecurring handles GET /recurring
func (h *RecurringHandler) GetRecurring(c echo.Context) error {
	templates, err := h.recurringService.ListRecurring()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recurring templates")
		return NewInternalError(c, "Failed to list recurring templates")
	}
	return c.JSON(http.StatusOK, templates)
}

// UpdateRecurring handles PUT /recurring/:id
func (h *RecurringHandler) UpdateRecurring(c echo.Context) error {
	id := c.Param("id")

	var req RecurringRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, validationErrs := req.toInput()
	if validationErrs != nil {
		return NewValidationError(c, "Validation failed", validationErrs)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	recurring, err := h.recurringService.UpdateRecurring(id, service.UpdateRecurringInput{
		CreateRecurringInput: input,
		IsActive:             isActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "Recurring template not found")
		}
		if validationErrs := mapRecurringValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Str("recurring_id", id).Msg("Failed to update recurring template")
		return NewInternalError(c, "Failed to update recurring template")
	}

	h.publisher.Publish(websocket.TopicData, websocket.RecurringUpdated(recurring))
	return c.JSON(http.StatusOK, recurring)
}

// DeleteRecurring handles DELETE /recurring/:id
func (h *RecurringHandler) DeleteRecurring(c echo.Context) error {
	id := c.Param("id")
	if err := h.recurringService.DeleteRecurring(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "Recurring template not found")
		}
		log.Error().Err(err).Str("recurring_id", id).Msg("Failed to delete recurring template")
		return NewInternalError(c, "Failed to delete recurring template")
	}

	h.publisher.Publish(websocket.TopicData, websocket.RecurringDeleted(map[string]string{"id": id}))
	return c.NoContent(http.StatusNoContent)
}

// ProcessRecurring handles POST /recurring/process, generating any due
// transaction instances regardless of the minimum run interval
func (h *RecurringHandler) ProcessRecurring(c echo.Context) error {
	result, err := h.recurringService.ProcessDue(domain.DateOf(time.Now()))
	if err != nil {
		log.Error().Err(err).Msg("Failed to process recurring templates")
		return NewInternalError(c, "Failed to process recurring templates")
	}

	if result.CreatedCount > 0 {
		h.publisher.Publish(websocket.TopicData, websocket.RecurringProcessed(result))
	}
	return c.JSON(http.StatusOK, result)
}

func mapRecurringValidation(err error) []ValidationError {
	switch {
	case errors.Is(err, domain.ErrDescriptionRequired):
		return []ValidationError{{Field: "description", Message: "Description is required"}}
	case errors.Is(err, domain.ErrInvalidAmount):
		return []ValidationError{{Field: "amount", Message: "Amount must be positive"}}
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return []ValidationError{{Field: "type", Message: "Must be INCOME or EXPENSE"}}
	case errors.Is(err, domain.ErrCategoryRequired):
		return []ValidationError{{Field: "category", Message: "Category is required"}}
	case errors.Is(err, domain.ErrInvalidFrequency):
		return []ValidationError{{Field: "frequency", Message: "Must be daily, weekly, monthly or yearly"}}
	case errors.Is(err, domain.ErrInvalidDate):
		return []ValidationError{{Field: "startDate", Message: "Start date is required and must not be after the end date"}}
	default:
		return nil
	}
}
