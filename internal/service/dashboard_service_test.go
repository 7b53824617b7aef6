package service

import (
	"testing"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthSummary(t *testing.T) {
	repo := testutil.NewMockTransactionRepository()
	service := NewDashboardService(repo)

	repo.AddTransaction(&domain.Transaction{
		ID: "tx_1", Amount: decimal.NewFromInt(3000), Type: domain.TransactionTypeIncome,
		Category: "Salary", Date: domain.NewDate(2026, time.March, 1),
	})
	repo.AddTransaction(expense("Food", 200, domain.NewDate(2026, time.March, 10)))
	repo.AddTransaction(expense("Food", 100, domain.NewDate(2026, time.March, 20)))
	repo.AddTransaction(expense("Transport", 300, domain.NewDate(2026, time.March, 15)))
	repo.AddTransaction(expense("Food", 999, domain.NewDate(2026, time.February, 10)))

	summary, err := service.MonthSummary("2026-03")
	require.NoError(t, err)

	assert.True(t, summary.TotalIncome.Equal(decimal.NewFromInt(3000)))
	assert.True(t, summary.TotalExpenses.Equal(decimal.NewFromInt(600)))
	assert.True(t, summary.Net.Equal(decimal.NewFromInt(2400)))

	// Descending by total, name as tiebreaker
	require.Len(t, summary.ExpensesByCategory, 2)
	assert.Equal(t, "Food", summary.ExpensesByCategory[0].Category)
	assert.True(t, summary.ExpensesByCategory[0].Total.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "Transport", summary.ExpensesByCategory[1].Category)
}

func TestMonthSummary_EmptyMonth(t *testing.T) {
	service := NewDashboardService(testutil.NewMockTransactionRepository())

	summary, err := service.MonthSummary("2026-03")
	require.NoError(t, err)
	assert.True(t, summary.TotalIncome.IsZero())
	assert.True(t, summary.TotalExpenses.IsZero())
	assert.Empty(t, summary.ExpensesByCategory)
}

func TestMonthSummary_InvalidKey(t *testing.T) {
	service := NewDashboardService(testutil.NewMockTransactionRepository())

	_, err := service.MonthSummary("2026/03")
	assert.ErrorIs(t, err, domain.ErrInvalidMonthKey)
}
