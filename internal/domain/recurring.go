package domain

import (
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ValidFrequency reports whether f is a known frequency
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction is a template describing a repeating obligation,
// distinct from the concrete Transaction instances it generates.
// NextDueDate is derived from StartDate, Frequency, and the chain of prior
// due dates; it is only ever set directly at creation (to StartDate).
type RecurringTransaction struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	Type              TransactionType `json:"type"`
	Category          string          `json:"category"`
	Frequency         Frequency       `json:"frequency"`
	StartDate         Date            `json:"startDate"`
	EndDate           *Date           `json:"endDate,omitempty"` // inclusive bound
	NextDueDate       Date            `json:"nextDueDate"`
	LastGeneratedDate *Date           `json:"lastGeneratedDate,omitempty"`
	IsActive          bool            `json:"isActive"`
	Tags              []string        `json:"tags,omitempty"`
}

// RecurringRepository persists recurring templates as a full-collection
// snapshot. SaveAll supports the engine's batch write-back after a
// processing run.
type RecurringRepository interface {
	GetAll() ([]*RecurringTransaction, error)
	Create(rt *RecurringTransaction) (*RecurringTransaction, error)
	Update(rt *RecurringTransaction) (*RecurringTransaction, error)
	Delete(id string) error
	SaveAll(templates []*RecurringTransaction) error
}
