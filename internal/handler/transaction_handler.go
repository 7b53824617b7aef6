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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Description string   `json:"description"`
	Amount      string   `json:"amount"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags,omitempty"`
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	tx, err := h.transactionService.CreateTransaction(service.CreateTransactionInput{
		Description: req.Description,
		Amount:      amount,
		Type:        domain.TransactionType(req.Type),
		Category:    req.Category,
		Date:        date,
		Tags:        req.Tags,
	})
	if err != nil {
		if validationErrs := mapTransactionValidation(err); validationErrs != nil {
			return NewValidationError(c, "Validation failed", validationErrs)
		}
		log.Error().Err(err).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	h.publisher.Publish(websocket.TopicData, websocket.TransactionCreated(tx))
	return c.JSON(http.StatusCreated, tx)
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	transactions, err := h.transactionService.ListTransactions()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}
	return c.JSON(http.StatusOK, transactions)
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id := c.Param("id")
	if err := h.transactionService.DeleteTransaction(id); err != nil {
		log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	h.publisher.Publish(websocket.TopicData, websocket.TransactionDeleted(map[string]string{"id": id}))
	return c.NoContent(http.StatusNoContent)
}

// ExportTransactions handles GET /transactions/export, returning a CSV
// attachment
func (h *TransactionHandler) ExportTransactions(c echo.Context) error {
	transactions, err := h.transactionService.ListTransactions()
	if err != nil {
		log.Error().Err(err).Msg("Failed to export transactions")
		return NewInternalError(c, "Failed to export transactions")
	}

	csv := service.TransactionsToCSV(transactions)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transactions.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", []byte(csv))
}

func mapTransactionValidation(err error) []ValidationError {
	switch {
	case errors.Is(err, domain.ErrDescriptionRequired):
		return []ValidationError{{Field: "description", Message: "Description is required and must be at most 255 characters"}}
	case errors.Is(err, domain.ErrInvalidAmount):
		return []ValidationError{{Field: "amount", Message: "Amount must be positive"}}
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return []ValidationError{{Field: "type", Message: "Must be INCOME or EXPENSE"}}
	case errors.Is(err, domain.ErrCategoryRequired):
		return []ValidationError{{Field: "category", Message: "Category is required"}}
	case errors.Is(err, domain.ErrInvalidDate):
		return []ValidationError{{Field: "date", Message: "Date is required"}}
	default:
		return nil
	}
}
