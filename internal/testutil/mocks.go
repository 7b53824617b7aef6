package testutil

import (
	"fmt"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
)

// MockTransactionRepository is an in-memory implementation of
// domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions []*domain.Transaction
	CreateErr    error
	nextID       int
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: []*domain.Transaction{}}
}

// GetAll returns every stored transaction
func (m *MockTransactionRepository) GetAll() ([]*domain.Transaction, error) {
	return m.Transactions, nil
}

// Create appends a transaction with a generated ID
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.nextID++
	tx.ID = fmt.Sprintf("txn_mock_%d", m.nextID)
	tx.UserID = domain.DefaultUserID
	m.Transactions = append(m.Transactions, tx)
	return tx, nil
}

// Delete removes the matching transaction
func (m *MockTransactionRepository) Delete(id string) error {
	filtered := m.Transactions[:0]
	for _, tx := range m.Transactions {
		if tx.ID != id {
			filtered = append(filtered, tx)
		}
	}
	m.Transactions = filtered
	return nil
}

// SaveAll replaces the whole collection
func (m *MockTransactionRepository) SaveAll(transactions []*domain.Transaction) error {
	m.Transactions = transactions
	return nil
}

// AddTransaction seeds a transaction directly
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	m.Transactions = append(m.Transactions, tx)
}

// MockBudgetRepository is an in-memory implementation of
// domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets []*domain.Budget
	nextID  int
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: []*domain.Budget{}}
}

// GetAll returns every stored budget
func (m *MockBudgetRepository) GetAll() ([]*domain.Budget, error) {
	return m.Budgets, nil
}

// Create appends a budget with a generated ID
func (m *MockBudgetRepository) Create(b *domain.Budget) (*domain.Budget, error) {
	m.nextID++
	b.ID = fmt.Sprintf("budget_mock_%d", m.nextID)
	b.UserID = domain.DefaultUserID
	m.Budgets = append(m.Budgets, b)
	return b, nil
}

// Update replaces the budget with a matching ID
func (m *MockBudgetRepository) Update(b *domain.Budget) (*domain.Budget, error) {
	for i, existing := range m.Budgets {
		if existing.ID == b.ID {
			m.Budgets[i] = b
			return b, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes the matching budget
func (m *MockBudgetRepository) Delete(id string) error {
	filtered := m.Budgets[:0]
	for _, b := range m.Budgets {
		if b.ID != id {
			filtered = append(filtered, b)
		}
	}
	m.Budgets = filtered
	return nil
}

// SaveAll replaces the whole collection
func (m *MockBudgetRepository) SaveAll(budgets []*domain.Budget) error {
	m.Budgets = budgets
	return nil
}

// AddBudget seeds a budget directly
func (m *MockBudgetRepository) AddBudget(b *domain.Budget) {
	m.Budgets = append(m.Budgets, b)
}

// MockRecurringRepository is an in-memory implementation of
// domain.RecurringRepository
type MockRecurringRepository struct {
	Templates  []*domain.RecurringTransaction
	SaveAllErr error
	nextID     int
}

// NewMockRecurringRepository creates a new MockRecurringRepository
func NewMockRecurringRepository() *MockRecurringRepository {
	return &MockRecurringRepository{Templates: []*domain.RecurringTransaction{}}
}

// GetAll returns every stored template
func (m *MockRecurringRepository) GetAll() ([]*domain.RecurringTransaction, error) {
	return m.Templates, nil
}

// Create appends a template with a generated ID
func (m *MockRecurringRepository) Create(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	m.nextID++
	rt.ID = fmt.Sprintf("rectxn_mock_%d", m.nextID)
	rt.UserID = domain.DefaultUserID
	m.Templates = append(m.Templates, rt)
	return rt, nil
}

// Update replaces the template with a matching ID
func (m *MockRecurringRepository) Update(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	for i, existing := range m.Templates {
		if existing.ID == rt.ID {
			m.Templates[i] = rt
			return rt, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes the matching template
func (m *MockRecurringRepository) Delete(id string) error {
	filtered := m.Templates[:0]
	for _, rt := range m.Templates {
		if rt.ID != id {
			filtered = append(filtered, rt)
		}
	}
	m.Templates = filtered
	return nil
}

// SaveAll replaces the whole collection
func (m *MockRecurringRepository) SaveAll(templates []*domain.RecurringTransaction) error {
	if m.SaveAllErr != nil {
		return m.SaveAllErr
	}
	m.Templates = templates
	return nil
}

// AddTemplate seeds a template directly
func (m *MockRecurringRepository) AddTemplate(rt *domain.RecurringTransaction) {
	m.Templates = append(m.Templates, rt)
}

// MockSettingsRepository is an in-memory implementation of
// domain.SettingsRepository
type MockSettingsRepository struct {
	Settings *domain.Settings
	LastRun  time.Time
}

// NewMockSettingsRepository creates a new MockSettingsRepository
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{Settings: domain.DefaultSettings()}
}

// Get returns the stored settings
func (m *MockSettingsRepository) Get() (*domain.Settings, error) {
	return m.Settings, nil
}

// Save replaces the stored settings
func (m *MockSettingsRepository) Save(s *domain.Settings) error {
	m.Settings = s
	return nil
}

// LastRecurringRun returns the stored last-run timestamp
func (m *MockSettingsRepository) LastRecurringRun() (time.Time, error) {
	return m.LastRun, nil
}

// SetLastRecurringRun records a last-run timestamp
func (m *MockSettingsRepository) SetLastRecurringRun(t time.Time) error {
	m.LastRun = t
	return nil
}
