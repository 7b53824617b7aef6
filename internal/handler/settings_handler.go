package handler

import (
	"errors"
	"net/http"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SettingsHandler handles settings HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
	publisher       websocket.EventPublisher
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService, publisher websocket.EventPublisher) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		publisher:       publisher,
	}
}

// CategoryLists groups the built-in category names by transaction type
type CategoryLists struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.settingsService.Get()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		return NewInternalError(c, "Failed to load settings")
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	var settings domain.Settings
	if err := c.Bind(&settings); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	updated, err := h.settingsService.Update(&settings)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLanguage):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "language", Message: "Must be en or zh-TW"},
			})
		case errors.Is(err, service.ErrInvalidCurrency):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "selectedCurrency", Message: "Unsupported currency code"},
			})
		}
		log.Error().Err(err).Msg("Failed to save settings")
		return NewInternalError(c, "Failed to save settings")
	}

	h.publisher.Publish(websocket.TopicData, websocket.SettingsUpdated(updated))
	return c.JSON(http.StatusOK, updated)
}

// GetDefaultCategories handles GET /settings/categories
func (h *SettingsHandler) GetDefaultCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, CategoryLists{
		Expense: domain.DefaultExpenseCategories,
		Income:  domain.DefaultIncomeCategories,
	})
}
