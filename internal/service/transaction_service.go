package service

import (
	"strings"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    string
	Date        domain.Date
	Tags        []string
}

// CreateTransaction validates the input and persists a new transaction
func (s *TransactionService) CreateTransaction(input CreateTransactionInput) (*domain.Transaction, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, domain.ErrDescriptionRequired
	}
	if len(description) > domain.MaxDescriptionLength {
		return nil, domain.ErrDescriptionRequired
	}

	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}

	if strings.TrimSpace(input.Category) == "" {
		return nil, domain.ErrCategoryRequired
	}

	if input.Date.IsZero() {
		return nil, domain.ErrInvalidDate
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	return s.transactionRepo.Create(&domain.Transaction{
		Description: description,
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    input.Category,
		Date:        input.Date,
		Tags:        tags,
	})
}

// ListTransactions returns every stored transaction. Callers sort as needed.
func (s *TransactionService) ListTransactions() ([]*domain.Transaction, error) {
	return s.transactionRepo.GetAll()
}

// DeleteTransaction removes a transaction by ID
func (s *TransactionService) DeleteTransaction(id string) error {
	return s.transactionRepo.Delete(id)
}
