package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecurringMinRunInterval is the minimum time between recurring processing
// runs; ProcessDueIfStale skips runs inside this window.
const RecurringMinRunInterval = 12 * time.Hour

// RecurringService owns recurring transaction templates: CRUD over the
// template collection and the due-date processing engine that materializes
// concrete transactions.
type RecurringService struct {
	recurringRepo   domain.RecurringRepository
	transactionRepo domain.TransactionRepository
	settingsRepo    domain.SettingsRepository
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(
	recurringRepo domain.RecurringRepository,
	transactionRepo domain.TransactionRepository,
	settingsRepo domain.SettingsRepository,
) *RecurringService {
	return &RecurringService{
		recurringRepo:   recurringRepo,
		transactionRepo: transactionRepo,
		settingsRepo:    settingsRepo,
	}
}

// NextDueDate advances a due date one period.
//
// MONTHLY keeps the anchor day from startDate: the due day is
// min(startDate's day, days in the target month), so a template started on
// the 31st lands on the 28th/29th/30th in short months and returns to the
// 31st afterwards instead of drifting. YEARLY reuses startDate's month and
// day at the year after the current due date.
func NextDueDate(current domain.Date, frequency domain.Frequency, start domain.Date) (domain.Date, error) {
	switch frequency {
	case domain.FrequencyDaily:
		return current.AddDays(1), nil
	case domain.FrequencyWeekly:
		return current.AddDays(7), nil
	case domain.FrequencyMonthly:
		first := time.Date(current.Year, current.Month+1, 1, 0, 0, 0, 0, time.UTC)
		year, month := first.Year(), first.Month()
		day := start.Day
		if last := domain.DaysInMonth(year, month); day > last {
			day = last
		}
		return domain.NewDate(year, month, day), nil
	case domain.FrequencyYearly:
		return domain.DateOf(time.Date(current.Year+1, start.Month, start.Day, 0, 0, 0, 0, time.UTC)), nil
	default:
		// An unknown frequency means the stored data violates the schema
		return domain.Date{}, fmt.Errorf("%w: %q", domain.ErrInvalidFrequency, frequency)
	}
}

// ProcessResult reports the outcome of a processing run
type ProcessResult struct {
	CreatedCount int      `json:"createdCount"`
	Errors       []string `json:"errors"`
}

// ProcessDue walks every active template and materializes a transaction for
// each due date at or before today, catching up missed occurrences in one
// batch. Templates past their end date are deactivated; a template whose due
// date cannot be advanced is deactivated and reported so it never spins on
// subsequent runs. All templates are written back in a single save.
func (s *RecurringService) ProcessDue(today domain.Date) (*ProcessResult, error) {
	templates, err := s.recurringRepo.GetAll()
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{Errors: []string{}}

	for _, rt := range templates {
		if !rt.IsActive {
			continue
		}

		for rt.IsActive && !rt.NextDueDate.After(today) {
			if rt.EndDate != nil && rt.NextDueDate.After(*rt.EndDate) {
				rt.IsActive = false
				break
			}

			// Guard against double-generation from a prior partial run
			if rt.LastGeneratedDate != nil && rt.LastGeneratedDate.Equal(rt.NextDueDate) {
				log.Debug().Str("recurring_id", rt.ID).Str("due_date", rt.NextDueDate.String()).
					Msg("Instance already generated for due date, advancing")
				next, err := NextDueDate(rt.NextDueDate, rt.Frequency, rt.StartDate)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("error advancing due date for %s: %v", rt.Description, err))
					rt.IsActive = false
					break
				}
				rt.NextDueDate = next
				continue
			}

			tags := make([]string, len(rt.Tags))
			copy(tags, rt.Tags)
			if _, err := s.transactionRepo.Create(&domain.Transaction{
				Description: rt.Description,
				Amount:      rt.Amount,
				Type:        rt.Type,
				Category:    rt.Category,
				Date:        rt.NextDueDate,
				Tags:        tags,
			}); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("error creating transaction for %s: %v", rt.Description, err))
				break
			}
			result.CreatedCount++

			generated := rt.NextDueDate
			rt.LastGeneratedDate = &generated

			next, err := NextDueDate(rt.NextDueDate, rt.Frequency, rt.StartDate)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("error advancing due date for %s: %v", rt.Description, err))
				rt.IsActive = false
				break
			}
			rt.NextDueDate = next

			if rt.EndDate != nil && rt.NextDueDate.After(*rt.EndDate) {
				rt.IsActive = false
			}
		}
	}

	if err := s.recurringRepo.SaveAll(templates); err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessDueIfStale runs ProcessDue only when the last run is older than
// RecurringMinRunInterval. Returns nil when the run was skipped.
func (s *RecurringService) ProcessDueIfStale(now time.Time) (*ProcessResult, error) {
	lastRun, err := s.settingsRepo.LastRecurringRun()
	if err != nil {
		return nil, err
	}
	if !lastRun.IsZero() && now.Sub(lastRun) < RecurringMinRunInterval {
		log.Debug().Time("last_run", lastRun).Msg("Skipping recurring processing, ran recently")
		return nil, nil
	}

	result, err := s.ProcessDue(domain.DateOf(now))
	if err != nil {
		return nil, err
	}
	if err := s.settingsRepo.SetLastRecurringRun(now); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateRecurringInput holds the input for creating a recurring template
type CreateRecurringInput struct {
	Description string
	Amount      decimal.Decimal
	Type        domain.TransactionType
	Category    string
	Frequency   domain.Frequency
	StartDate   domain.Date
	EndDate     *domain.Date
	Tags        []string
}

func validateRecurringInput(input CreateRecurringInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return domain.ErrDescriptionRequired
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return domain.ErrInvalidTransactionType
	}
	if strings.TrimSpace(input.Category) == "" {
		return domain.ErrCategoryRequired
	}
	if !domain.ValidFrequency(input.Frequency) {
		return domain.ErrInvalidFrequency
	}
	if input.StartDate.IsZero() {
		return domain.ErrInvalidDate
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return domain.ErrInvalidDate
	}
	return nil
}

// CreateRecurring creates a new template. New templates start active with
// their first due date on the start date.
func (s *RecurringService) CreateRecurring(input CreateRecurringInput) (*domain.RecurringTransaction, error) {
	if err := validateRecurringInput(input); err != nil {
		return nil, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	return s.recurringRepo.Create(&domain.RecurringTransaction{
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Type:        input.Type,
		Category:    input.Category,
		Frequency:   input.Frequency,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		NextDueDate: input.StartDate,
		IsActive:    true,
		Tags:        tags,
	})
}

// UpdateRecurringInput holds the input for updating a recurring template
type UpdateRecurringInput struct {
	CreateRecurringInput
	IsActive bool
}

// UpdateRecurring replaces an existing template. Changing the start date
// before any instance was generated resets the next due date to it;
// toggling IsActive never recomputes the due date.
func (s *RecurringService) UpdateRecurring(id string, input UpdateRecurringInput) (*domain.RecurringTransaction, error) {
	if err := validateRecurringInput(input.CreateRecurringInput); err != nil {
		return nil, err
	}

	templates, err := s.recurringRepo.GetAll()
	if err != nil {
		return nil, err
	}
	var existing *domain.RecurringTransaction
	for _, rt := range templates {
		if rt.ID == id {
			existing = rt
			break
		}
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	if !existing.StartDate.Equal(input.StartDate) && existing.LastGeneratedDate == nil {
		existing.NextDueDate = input.StartDate
	}

	existing.Description = strings.TrimSpace(input.Description)
	existing.Amount = input.Amount
	existing.Type = input.Type
	existing.Category = input.Category
	existing.Frequency = input.Frequency
	existing.StartDate = input.StartDate
	existing.EndDate = input.EndDate
	existing.IsActive = input.IsActive
	if input.Tags != nil {
		existing.Tags = input.Tags
	}

	return s.recurringRepo.Update(existing)
}

// ListRecurring returns every stored template
func (s *RecurringService) ListRecurring() ([]*domain.RecurringTransaction, error) {
	return s.recurringRepo.GetAll()
}

// DeleteRecurring hard-deletes a template. Transactions already
// materialized from it are untouched.
func (s *RecurringService) DeleteRecurring(id string) error {
	return s.recurringRepo.Delete(id)
}
