package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/service"
	"github.com/clarityledger/clarity-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func TestGetMonthSummary_Success(t *testing.T) {
	e := echo.New()
	transactionRepo := testutil.NewMockTransactionRepository()
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: "tx_1", Description: "Salary", Amount: decimal.NewFromInt(3000),
		Type: domain.TransactionTypeIncome, Category: "Salary",
		Date: domain.NewDate(2026, time.March, 1),
	})
	transactionRepo.AddTransaction(&domain.Transaction{
		ID: "tx_2", Description: "Groceries", Amount: decimal.NewFromInt(200),
		Type: domain.TransactionTypeExpense, Category: "Groceries",
		Date: domain.NewDate(2026, time.March, 8),
	})
	handler := NewDashboardHandler(service.NewDashboardService(transactionRepo))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary/2026-03", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("monthYear")
	c.SetParamValues("2026-03")

	if err := handler.GetMonthSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var summary service.MonthlySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !summary.TotalIncome.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected income 3000, got %s", summary.TotalIncome)
	}
	if !summary.TotalExpenses.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Expected expenses 200, got %s", summary.TotalExpenses)
	}
}

func TestGetMonthSummary_InvalidMonth(t *testing.T) {
	e := echo.New()
	handler := NewDashboardHandler(service.NewDashboardService(testutil.NewMockTransactionRepository()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary/bogus", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("monthYear")
	c.SetParamValues("bogus")

	if err := handler.GetMonthSummary(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}
}
