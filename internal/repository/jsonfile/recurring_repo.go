package jsonfile

import (
	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// RecurringRepository implements domain.RecurringRepository over the JSON
// snapshot store
type RecurringRepository struct {
	store *Store
}

// NewRecurringRepository creates a new RecurringRepository
func NewRecurringRepository(store *Store) *RecurringRepository {
	return &RecurringRepository{store: store}
}

// GetAll returns every stored recurring template
func (r *RecurringRepository) GetAll() ([]*domain.RecurringTransaction, error) {
	templates := []*domain.RecurringTransaction{}
	if err := r.store.Load(CollectionRecurring, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Create generates an ID, stamps the owner marker, appends the template,
// and persists the full collection
func (r *RecurringRepository) Create(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	templates, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	rt.ID = newRecordID("rectxn")
	rt.UserID = domain.DefaultUserID
	templates = append(templates, rt)

	if err := r.store.Save(CollectionRecurring, templates); err != nil {
		return nil, err
	}
	return rt, nil
}

// Update replaces the template with a matching ID
func (r *RecurringRepository) Update(rt *domain.RecurringTransaction) (*domain.RecurringTransaction, error) {
	templates, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	for i, existing := range templates {
		if existing.ID == rt.ID {
			rt.UserID = domain.DefaultUserID
			templates[i] = rt
			if err := r.store.Save(CollectionRecurring, templates); err != nil {
				return nil, err
			}
			return rt, nil
		}
	}

	log.Warn().Str("recurring_id", rt.ID).Msg("Recurring template not found for update")
	return nil, domain.ErrNotFound
}

// Delete removes the matching template. Already-materialized transactions
// are untouched.
func (r *RecurringRepository) Delete(id string) error {
	templates, err := r.GetAll()
	if err != nil {
		return err
	}

	filtered := templates[:0]
	for _, rt := range templates {
		if rt.ID != id {
			filtered = append(filtered, rt)
		}
	}

	if len(filtered) == len(templates) {
		log.Warn().Str("recurring_id", id).Msg("Recurring template not found for deletion")
		return nil
	}
	return r.store.Save(CollectionRecurring, filtered)
}

// SaveAll replaces the whole template collection in one write. The
// recurring engine uses this for its end-of-run batch persist.
func (r *RecurringRepository) SaveAll(templates []*domain.RecurringTransaction) error {
	for _, rt := range templates {
		rt.UserID = domain.DefaultUserID
	}
	return r.store.Save(CollectionRecurring, templates)
}
