package service

import (
	"errors"
	"strings"

	"github.com/clarityledger/clarity-backend/internal/domain"
)

var (
	ErrInvalidLanguage = errors.New("unsupported language")
	ErrInvalidCurrency = errors.New("unsupported currency")
)

// SettingsService manages the single user settings record
type SettingsService struct {
	settingsRepo domain.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo domain.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// Get returns the current settings, falling back to defaults when nothing
// has been saved yet
func (s *SettingsService) Get() (*domain.Settings, error) {
	return s.settingsRepo.Get()
}

// Update validates and persists new settings. Category lists are trimmed
// and nil lists normalized to empty so the stored document stays uniform.
func (s *SettingsService) Update(settings *domain.Settings) (*domain.Settings, error) {
	if settings.Language != domain.LanguageEnglish && settings.Language != domain.LanguageTraditionalChinese {
		return nil, ErrInvalidLanguage
	}
	if !domain.ValidCurrencyCode(settings.SelectedCurrency) {
		return nil, ErrInvalidCurrency
	}
	if strings.TrimSpace(settings.ModelName) == "" {
		settings.ModelName = domain.DefaultModel
	}
	if strings.TrimSpace(settings.OCRModelName) == "" {
		settings.OCRModelName = domain.DefaultOCRModel
	}
	settings.CustomIncomeCategories = cleanCategories(settings.CustomIncomeCategories)
	settings.CustomExpenseCategories = cleanCategories(settings.CustomExpenseCategories)

	if err := s.settingsRepo.Save(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func cleanCategories(categories []string) []string {
	cleaned := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		cleaned = append(cleaned, c)
	}
	return cleaned
}
