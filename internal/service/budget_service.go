package service

import (
	"strings"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/util"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget business logic, including the monthly
// rollover calculation
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{budgetRepo: budgetRepo, transactionRepo: transactionRepo}
}

// spentInMonth sums EXPENSE amounts for a category within a month. Matching
// is a string-prefix check on the YYYY-MM portion of the transaction date.
func spentInMonth(transactions []*domain.Transaction, category, monthYear string) decimal.Decimal {
	spent := decimal.Zero
	for _, tx := range transactions {
		if tx.Type != domain.TransactionTypeExpense {
			continue
		}
		if tx.Category != category {
			continue
		}
		if !strings.HasPrefix(tx.Date.String(), monthYear) {
			continue
		}
		spent = spent.Add(tx.Amount)
	}
	return spent
}

// ComputeMonth computes the budgets for a month with spent, rollover, and
// effective target amounts.
//
// Rollover consults exactly one month back: a budget with rollover enabled
// carries in priorTarget - priorSpent from the immediately preceding month's
// budget for the same category, but only when that prior budget also opted
// in. The carried amount may be negative (overspend becomes a debit); the
// effective target is clamped at zero. Chains never extend past one hop.
func ComputeMonth(monthYear string, transactions []*domain.Transaction, budgets []*domain.Budget) ([]*domain.BudgetWithDetails, error) {
	prevMonthYear, err := util.PreviousMonthKey(monthYear)
	if err != nil {
		return nil, domain.ErrInvalidMonthKey
	}

	results := []*domain.BudgetWithDetails{}
	for _, budget := range budgets {
		if budget.MonthYear != monthYear {
			continue
		}

		spent := spentInMonth(transactions, budget.Category, budget.MonthYear)
		rollover := decimal.Zero
		effectiveTarget := budget.TargetAmount

		if budget.AllowRollover {
			var prior *domain.Budget
			for _, b := range budgets {
				if b.Category == budget.Category && b.MonthYear == prevMonthYear && b.AllowRollover {
					prior = b
					break
				}
			}
			if prior != nil {
				priorSpent := spentInMonth(transactions, prior.Category, prior.MonthYear)
				rollover = prior.TargetAmount.Sub(priorSpent)
				effectiveTarget = effectiveTarget.Add(rollover)
			}
		}

		if effectiveTarget.IsNegative() {
			effectiveTarget = decimal.Zero
		}

		results = append(results, &domain.BudgetWithDetails{
			Budget:                *budget,
			SpentAmount:           spent,
			RolloverAmount:        rollover,
			EffectiveTargetAmount: effectiveTarget,
		})
	}
	return results, nil
}

// BudgetsForMonth loads the current data and computes the month's budgets
// with details. The projection is recomputed on every call.
func (s *BudgetService) BudgetsForMonth(monthYear string) ([]*domain.BudgetWithDetails, error) {
	transactions, err := s.transactionRepo.GetAll()
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return ComputeMonth(monthYear, transactions, budgets)
}

// ListBudgets returns every stored budget
func (s *BudgetService) ListBudgets() ([]*domain.Budget, error) {
	return s.budgetRepo.GetAll()
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	Category      string
	TargetAmount  decimal.Decimal
	MonthYear     string
	AllowRollover bool
}

func (s *BudgetService) validateBudgetInput(input BudgetInput) error {
	if strings.TrimSpace(input.Category) == "" {
		return domain.ErrCategoryRequired
	}
	if input.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if _, _, err := util.ParseMonthKey(input.MonthYear); err != nil {
		return domain.ErrInvalidMonthKey
	}
	return nil
}

// CreateBudget validates the input and persists a new budget
func (s *BudgetService) CreateBudget(input BudgetInput) (*domain.Budget, error) {
	if err := s.validateBudgetInput(input); err != nil {
		return nil, err
	}
	return s.budgetRepo.Create(&domain.Budget{
		Category:      input.Category,
		TargetAmount:  input.TargetAmount,
		MonthYear:     input.MonthYear,
		AllowRollover: input.AllowRollover,
	})
}

// UpdateBudget validates the input and replaces an existing budget
func (s *BudgetService) UpdateBudget(id string, input BudgetInput) (*domain.Budget, error) {
	if err := s.validateBudgetInput(input); err != nil {
		return nil, err
	}
	return s.budgetRepo.Update(&domain.Budget{
		ID:            id,
		Category:      input.Category,
		TargetAmount:  input.TargetAmount,
		MonthYear:     input.MonthYear,
		AllowRollover: input.AllowRollover,
	})
}

// DeleteBudget removes a budget by ID
func (s *BudgetService) DeleteBudget(id string) error {
	return s.budgetRepo.Delete(id)
}
