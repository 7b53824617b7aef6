package service

import (
	"sort"
	"strings"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/util"
	"github.com/shopspring/decimal"
)

// CategoryTotal is one category's expense total for a month
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthlySummary aggregates a month's cash flow for the dashboard
type MonthlySummary struct {
	MonthYear          string          `json:"monthYear"`
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	Net                decimal.Decimal `json:"net"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
}

// DashboardService computes dashboard aggregations from transactions
type DashboardService struct {
	transactionRepo domain.TransactionRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(transactionRepo domain.TransactionRepository) *DashboardService {
	return &DashboardService{transactionRepo: transactionRepo}
}

// MonthSummary computes income/expense totals and the per-category expense
// breakdown for a month
func (s *DashboardService) MonthSummary(monthYear string) (*MonthlySummary, error) {
	if _, _, err := util.ParseMonthKey(monthYear); err != nil {
		return nil, domain.ErrInvalidMonthKey
	}

	transactions, err := s.transactionRepo.GetAll()
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummary{
		MonthYear:          monthYear,
		TotalIncome:        decimal.Zero,
		TotalExpenses:      decimal.Zero,
		ExpensesByCategory: []CategoryTotal{},
	}

	byCategory := map[string]decimal.Decimal{}
	for _, tx := range transactions {
		if !strings.HasPrefix(tx.Date.String(), monthYear) {
			continue
		}
		switch tx.Type {
		case domain.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
		case domain.TransactionTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
			byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpenses)

	for category, total := range byCategory {
		summary.ExpensesByCategory = append(summary.ExpensesByCategory, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(summary.ExpensesByCategory, func(i, j int) bool {
		a, b := summary.ExpensesByCategory[i], summary.ExpensesByCategory[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.Category < b.Category
	})

	return summary, nil
}
