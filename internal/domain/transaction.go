package domain

import (
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// DefaultUserID is the owner marker stamped on every record. The app is
// single-user; the field exists so multi-user storage layouts stay possible.
const DefaultUserID = "default_clarityledger_user"

type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Date        Date            `json:"date"`
	Tags        []string        `json:"tags,omitempty"`
}

// TransactionRepository persists transactions as a full-collection snapshot.
// Create generates the record's ID and owner marker; there is no update
// operation, callers reconstruct via Delete plus Create.
type TransactionRepository interface {
	GetAll() ([]*Transaction, error)
	Create(tx *Transaction) (*Transaction, error)
	Delete(id string) error
	SaveAll(transactions []*Transaction) error
}

// DefaultExpenseCategories are the built-in expense categories
var DefaultExpenseCategories = []string{
	"Food", "Groceries", "Transport", "Utilities", "Housing",
	"Entertainment", "Health", "Shopping", "Education", "Travel", "Other",
}

// DefaultIncomeCategories are the built-in income categories
var DefaultIncomeCategories = []string{
	"Salary", "Bonus", "Investment", "Gift", "Other",
}
