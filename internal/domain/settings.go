package domain

import "time"

// Language codes supported by the app
const (
	LanguageEnglish            = "en"
	LanguageTraditionalChinese = "zh-TW"
)

// AvailableCurrencyCodes lists the currencies a user can select
var AvailableCurrencyCodes = []string{
	"USD", "EUR", "JPY", "GBP", "AUD", "CAD", "CNY", "TWD", "HKD",
}

// ValidCurrencyCode reports whether code is a selectable currency
func ValidCurrencyCode(code string) bool {
	for _, c := range AvailableCurrencyCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Settings holds the user-facing application settings
type Settings struct {
	APIKey                  string   `json:"apiKey"`
	ModelName               string   `json:"modelName"`
	OCRModelName            string   `json:"ocrModelName"`
	Language                string   `json:"language"`
	DarkMode                bool     `json:"darkMode"`
	SelectedCurrency        string   `json:"selectedCurrency"`
	CustomIncomeCategories  []string `json:"customIncomeCategories"`
	CustomExpenseCategories []string `json:"customExpenseCategories"`
}

// DefaultSettings returns the settings used before the user changes anything
func DefaultSettings() *Settings {
	return &Settings{
		ModelName:               DefaultModel,
		OCRModelName:            DefaultOCRModel,
		Language:                LanguageEnglish,
		SelectedCurrency:        "USD",
		CustomIncomeCategories:  []string{},
		CustomExpenseCategories: []string{},
	}
}

// Default completion models. The OCR model defaults to a multimodal one so
// image payloads can be attached.
const (
	DefaultModel    = "deepseek/deepseek-chat:free"
	DefaultOCRModel = "qwen/qwen2.5-vl-72b-instruct:free"
)

// SettingsRepository persists settings and the recurring-run gate timestamp,
// each under its own collection key.
type SettingsRepository interface {
	Get() (*Settings, error)
	Save(s *Settings) error
	LastRecurringRun() (time.Time, error)
	SetLastRecurringRun(t time.Time) error
}
