package jsonfile

import (
	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// BudgetRepository implements domain.BudgetRepository over the JSON
// snapshot store
type BudgetRepository struct {
	store *Store
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(store *Store) *BudgetRepository {
	return &BudgetRepository{store: store}
}

// GetAll returns every stored budget
func (r *BudgetRepository) GetAll() ([]*domain.Budget, error) {
	budgets := []*domain.Budget{}
	if err := r.store.Load(CollectionBudgets, &budgets); err != nil {
		return nil, err
	}
	return budgets, nil
}

// Create generates an ID, stamps the owner marker, appends the budget, and
// persists the full collection
func (r *BudgetRepository) Create(b *domain.Budget) (*domain.Budget, error) {
	budgets, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	b.ID = newRecordID("budget")
	b.UserID = domain.DefaultUserID
	budgets = append(budgets, b)

	if err := r.store.Save(CollectionBudgets, budgets); err != nil {
		return nil, err
	}
	return b, nil
}

// Update replaces the budget with a matching ID
func (r *BudgetRepository) Update(b *domain.Budget) (*domain.Budget, error) {
	budgets, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	for i, existing := range budgets {
		if existing.ID == b.ID {
			b.UserID = domain.DefaultUserID
			budgets[i] = b
			if err := r.store.Save(CollectionBudgets, budgets); err != nil {
				return nil, err
			}
			return b, nil
		}
	}

	log.Warn().Str("budget_id", b.ID).Msg("Budget not found for update")
	return nil, domain.ErrNotFound
}

// Delete removes the matching budget. A missing ID is a logged no-op.
func (r *BudgetRepository) Delete(id string) error {
	budgets, err := r.GetAll()
	if err != nil {
		return err
	}

	filtered := budgets[:0]
	for _, b := range budgets {
		if b.ID != id {
			filtered = append(filtered, b)
		}
	}

	if len(filtered) == len(budgets) {
		log.Warn().Str("budget_id", id).Msg("Budget not found for deletion")
		return nil
	}
	return r.store.Save(CollectionBudgets, filtered)
}

// SaveAll replaces the whole budget collection
func (r *BudgetRepository) SaveAll(budgets []*domain.Budget) error {
	for _, b := range budgets {
		b.UserID = domain.DefaultUserID
	}
	return r.store.Save(CollectionBudgets, budgets)
}
