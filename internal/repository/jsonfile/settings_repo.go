package jsonfile

import (
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
)

// SettingsRepository implements domain.SettingsRepository over the JSON
// snapshot store. Settings and the recurring-run timestamp live under
// independent collection keys.
type SettingsRepository struct {
	store *Store
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(store *Store) *SettingsRepository {
	return &SettingsRepository{store: store}
}

// Get returns the stored settings, falling back to defaults when nothing
// has been saved yet
func (r *SettingsRepository) Get() (*domain.Settings, error) {
	var stored *domain.Settings
	if err := r.store.Load(CollectionSettings, &stored); err != nil {
		return nil, err
	}
	if stored == nil {
		return domain.DefaultSettings(), nil
	}
	if stored.CustomIncomeCategories == nil {
		stored.CustomIncomeCategories = []string{}
	}
	if stored.CustomExpenseCategories == nil {
		stored.CustomExpenseCategories = []string{}
	}
	return stored, nil
}

// Save persists the settings snapshot
func (r *SettingsRepository) Save(s *domain.Settings) error {
	return r.store.Save(CollectionSettings, s)
}

type lastRunRecord struct {
	LastRun time.Time `json:"lastRun"`
}

// LastRecurringRun returns the timestamp of the last recurring processing
// run, zero if it never ran
func (r *SettingsRepository) LastRecurringRun() (time.Time, error) {
	var rec lastRunRecord
	if err := r.store.Load(CollectionLastRecurringRun, &rec); err != nil {
		return time.Time{}, err
	}
	return rec.LastRun, nil
}

// SetLastRecurringRun records the time of a recurring processing run
func (r *SettingsRepository) SetLastRecurringRun(t time.Time) error {
	return r.store.Save(CollectionLastRecurringRun, lastRunRecord{LastRun: t})
}
