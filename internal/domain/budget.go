package domain

import (
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Category      string          `json:"category"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	MonthYear     string          `json:"monthYear"` // YYYY-MM
	AllowRollover bool            `json:"allowRollover"`
}

// BudgetWithDetails is a Budget plus amounts computed for its month. It is
// a projection recomputed on every query and never persisted.
type BudgetWithDetails struct {
	Budget
	SpentAmount           decimal.Decimal `json:"spentAmount"`
	RolloverAmount        decimal.Decimal `json:"rolloverAmount"`
	EffectiveTargetAmount decimal.Decimal `json:"effectiveTargetAmount"`
}

// BudgetRepository persists budgets as a full-collection snapshot.
// Uniqueness per (category, monthYear) is not enforced here; callers must
// tolerate duplicates.
type BudgetRepository interface {
	GetAll() ([]*Budget, error)
	Create(b *Budget) (*Budget, error)
	Update(b *Budget) (*Budget, error)
	Delete(id string) error
	SaveAll(budgets []*Budget) error
}
