package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Violation describes one schema problem found while decoding a backup
// document
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ImportError carries every violation found in a backup document. Import is
// all-or-nothing: a single violation rejects the whole document.
type ImportError struct {
	Violations []Violation
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("backup document rejected: %d violation(s)", len(e.Violations))
}

// BackupService exports and imports the full application state as a single
// JSON document
type BackupService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	recurringRepo   domain.RecurringRepository
	settingsRepo    domain.SettingsRepository
}

// NewBackupService creates a new BackupService
func NewBackupService(
	transactionRepo domain.TransactionRepository,
	budgetRepo domain.BudgetRepository,
	recurringRepo domain.RecurringRepository,
	settingsRepo domain.SettingsRepository,
) *BackupService {
	return &BackupService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		recurringRepo:   recurringRepo,
		settingsRepo:    settingsRepo,
	}
}

// Export collects every collection into a backup document at the current
// version
func (s *BackupService) Export() (*domain.BackupDocument, error) {
	transactions, err := s.transactionRepo.GetAll()
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgetRepo.GetAll()
	if err != nil {
		return nil, err
	}
	recurring, err := s.recurringRepo.GetAll()
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	return &domain.BackupDocument{
		Version:               domain.CurrentBackupVersion,
		Settings:              *settings,
		Transactions:          transactions,
		Budgets:               budgets,
		RecurringTransactions: recurring,
	}, nil
}

// rawBackup mirrors the document shape with records left undecoded so each
// entity decoder can validate field-by-field
type rawBackup struct {
	Version               *string            `json:"version"`
	Settings              json.RawMessage    `json:"settings"`
	Transactions          *[]json.RawMessage `json:"transactions"`
	Budgets               *[]json.RawMessage `json:"budgets"`
	RecurringTransactions *[]json.RawMessage `json:"recurringTransactions"`
}

// Import validates and applies a backup document. Every record is checked
// before anything is written; any invalid record anywhere rejects the whole
// import. Documents older than 1.0.2 clear the recurring collection, since
// those versions predate it.
func (s *BackupService) Import(data []byte) error {
	var raw rawBackup
	if err := json.Unmarshal(data, &raw); err != nil {
		return &ImportError{Violations: []Violation{{Path: "", Message: "document is not valid JSON"}}}
	}

	var violations []Violation

	version := ""
	if raw.Version == nil {
		violations = append(violations, Violation{Path: "version", Message: "missing"})
	} else {
		version = *raw.Version
		accepted := false
		for _, v := range domain.AcceptedBackupVersions {
			if version == v {
				accepted = true
				break
			}
		}
		if !accepted {
			violations = append(violations, Violation{Path: "version", Message: fmt.Sprintf("unsupported version %q", version)})
		}
	}

	settings, svio := decodeBackupSettings(raw.Settings, version)
	violations = append(violations, svio...)

	var transactions []*domain.Transaction
	if raw.Transactions == nil {
		violations = append(violations, Violation{Path: "transactions", Message: "missing"})
	} else {
		for i, rec := range *raw.Transactions {
			tx, vio := decodeBackupTransaction(rec, i)
			violations = append(violations, vio...)
			if len(vio) == 0 {
				transactions = append(transactions, tx)
			}
		}
	}

	var budgets []*domain.Budget
	if raw.Budgets == nil {
		violations = append(violations, Violation{Path: "budgets", Message: "missing"})
	} else {
		for i, rec := range *raw.Budgets {
			b, vio := decodeBackupBudget(rec, i)
			violations = append(violations, vio...)
			if len(vio) == 0 {
				budgets = append(budgets, b)
			}
		}
	}

	var recurring []*domain.RecurringTransaction
	if version == domain.BackupVersion102 && raw.RecurringTransactions != nil {
		for i, rec := range *raw.RecurringTransactions {
			rt, vio := decodeBackupRecurring(rec, i)
			violations = append(violations, vio...)
			if len(vio) == 0 {
				recurring = append(recurring, rt)
			}
		}
	}

	if len(violations) > 0 {
		log.Warn().Int("violations", len(violations)).Msg("Backup import rejected")
		return &ImportError{Violations: violations}
	}

	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	if budgets == nil {
		budgets = []*domain.Budget{}
	}
	if recurring == nil {
		recurring = []*domain.RecurringTransaction{}
	}

	// The id field is optional in the document; records that arrive without
	// one get a fresh ID so they stay individually addressable after restore
	for _, tx := range transactions {
		if tx.ID == "" {
			tx.ID = importedRecordID("txn")
		}
	}
	for _, b := range budgets {
		if b.ID == "" {
			b.ID = importedRecordID("budget")
		}
	}
	for _, rt := range recurring {
		if rt.ID == "" {
			rt.ID = importedRecordID("rectxn")
		}
	}

	if err := s.settingsRepo.Save(settings); err != nil {
		return err
	}
	if err := s.transactionRepo.SaveAll(transactions); err != nil {
		return err
	}
	if err := s.budgetRepo.SaveAll(budgets); err != nil {
		return err
	}
	// Older documents predate recurring templates, so the collection is
	// cleared rather than kept from the previous state
	if err := s.recurringRepo.SaveAll(recurring); err != nil {
		return err
	}

	log.Info().Str("version", version).
		Int("transactions", len(transactions)).
		Int("budgets", len(budgets)).
		Int("recurring", len(recurring)).
		Msg("Backup imported")
	return nil
}

// decode helpers

func rawObject(data json.RawMessage, path string) (map[string]any, []Violation) {
	if len(data) == 0 {
		return nil, []Violation{{Path: path, Message: "missing"}}
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, []Violation{{Path: path, Message: "not an object"}}
	}
	return obj, nil
}

// importedRecordID matches the format the repositories use for new records
func importedRecordID(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, time.Now().UTC().Format(time.RFC3339Nano), uuid.NewString()[:8])
}

func optString(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func stringField(obj map[string]any, path, key string, required bool, violations *[]Violation) string {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			*violations = append(*violations, Violation{Path: path + "." + key, Message: "missing"})
		}
		return ""
	}
	s, ok := v.(string)
	if !ok {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be a string"})
		return ""
	}
	return s
}

func boolField(obj map[string]any, path, key string, required bool, violations *[]Violation) bool {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			*violations = append(*violations, Violation{Path: path + "." + key, Message: "missing"})
		}
		return false
	}
	b, ok := v.(bool)
	if !ok {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be a boolean"})
		return false
	}
	return b
}

func amountField(obj map[string]any, path, key string, violations *[]Violation) decimal.Decimal {
	v, ok := obj[key]
	if !ok || v == nil {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "missing"})
		return decimal.Zero
	}
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be a number"})
			return decimal.Zero
		}
		return d
	default:
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be a number"})
		return decimal.Zero
	}
}

func dateField(obj map[string]any, path, key string, required bool, violations *[]Violation) *domain.Date {
	v, ok := obj[key]
	if !ok || v == nil {
		if required {
			*violations = append(*violations, Violation{Path: path + "." + key, Message: "missing"})
		}
		return nil
	}
	s, ok := v.(string)
	if !ok {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be a YYYY-MM-DD string"})
		return nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be a valid YYYY-MM-DD date"})
		return nil
	}
	return &d
}

func tagsField(obj map[string]any, path string, violations *[]Violation) []string {
	v, ok := obj["tags"]
	if !ok || v == nil {
		return []string{}
	}
	list, ok := v.([]any)
	if !ok {
		*violations = append(*violations, Violation{Path: path + ".tags", Message: "must be an array of strings"})
		return nil
	}
	tags := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			*violations = append(*violations, Violation{Path: path + ".tags", Message: "must be an array of strings"})
			return nil
		}
		tags = append(tags, s)
	}
	return tags
}

func stringListField(obj map[string]any, path, key string, violations *[]Violation) []string {
	v, ok := obj[key]
	if !ok || v == nil {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "missing"})
		return []string{}
	}
	list, ok := v.([]any)
	if !ok {
		*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be an array of strings"})
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			*violations = append(*violations, Violation{Path: path + "." + key, Message: "must be an array of strings"})
			return []string{}
		}
		out = append(out, s)
	}
	return out
}

func transactionTypeField(obj map[string]any, path string, violations *[]Violation) domain.TransactionType {
	s := stringField(obj, path, "type", true, violations)
	typ := domain.TransactionType(s)
	if s != "" && typ != domain.TransactionTypeIncome && typ != domain.TransactionTypeExpense {
		*violations = append(*violations, Violation{Path: path + ".type", Message: "must be INCOME or EXPENSE"})
	}
	return typ
}

func decodeBackupSettings(data json.RawMessage, version string) (*domain.Settings, []Violation) {
	obj, vio := rawObject(data, "settings")
	if vio != nil {
		return nil, vio
	}

	var violations []Violation
	s := domain.DefaultSettings()

	s.APIKey = stringField(obj, "settings", "apiKey", true, &violations)
	s.ModelName = stringField(obj, "settings", "modelName", true, &violations)

	// ocrModelName arrived in 1.0.1; when present it must be a string
	if v, ok := obj["ocrModelName"]; ok && v != nil {
		if ocr, isStr := optString(obj, "ocrModelName"); isStr {
			s.OCRModelName = ocr
		} else {
			violations = append(violations, Violation{Path: "settings.ocrModelName", Message: "must be a string"})
		}
	} else if version == domain.BackupVersion100 {
		s.OCRModelName = domain.DefaultOCRModel
	}

	lang := stringField(obj, "settings", "language", true, &violations)
	if lang != "" {
		if lang != domain.LanguageEnglish && lang != domain.LanguageTraditionalChinese {
			violations = append(violations, Violation{Path: "settings.language", Message: "unsupported language"})
		} else {
			s.Language = lang
		}
	}

	s.DarkMode = boolField(obj, "settings", "darkMode", true, &violations)

	currency := stringField(obj, "settings", "selectedCurrency", true, &violations)
	if currency != "" {
		if !domain.ValidCurrencyCode(currency) {
			violations = append(violations, Violation{Path: "settings.selectedCurrency", Message: "unknown currency code"})
		} else {
			s.SelectedCurrency = currency
		}
	}

	s.CustomIncomeCategories = stringListField(obj, "settings", "customIncomeCategories", &violations)
	s.CustomExpenseCategories = stringListField(obj, "settings", "customExpenseCategories", &violations)

	return s, violations
}

func decodeBackupTransaction(data json.RawMessage, index int) (*domain.Transaction, []Violation) {
	path := fmt.Sprintf("transactions[%d]", index)
	obj, vio := rawObject(data, path)
	if vio != nil {
		return nil, vio
	}

	var violations []Violation
	tx := &domain.Transaction{}

	tx.ID = stringField(obj, path, "id", false, &violations)
	tx.Description = stringField(obj, path, "description", true, &violations)
	if strings.TrimSpace(tx.Description) == "" {
		violations = append(violations, Violation{Path: path + ".description", Message: "must not be empty"})
	}
	tx.Amount = amountField(obj, path, "amount", &violations)
	if tx.Amount.IsNegative() {
		violations = append(violations, Violation{Path: path + ".amount", Message: "must not be negative"})
	}
	tx.Type = transactionTypeField(obj, path, &violations)
	tx.Category = stringField(obj, path, "category", true, &violations)
	if strings.TrimSpace(tx.Category) == "" {
		violations = append(violations, Violation{Path: path + ".category", Message: "must not be empty"})
	}
	if d := dateField(obj, path, "date", true, &violations); d != nil {
		tx.Date = *d
	}
	tx.Tags = tagsField(obj, path, &violations)
	tx.UserID = domain.DefaultUserID

	return tx, violations
}

func decodeBackupBudget(data json.RawMessage, index int) (*domain.Budget, []Violation) {
	path := fmt.Sprintf("budgets[%d]", index)
	obj, vio := rawObject(data, path)
	if vio != nil {
		return nil, vio
	}

	var violations []Violation
	b := &domain.Budget{}

	b.ID = stringField(obj, path, "id", false, &violations)
	b.Category = stringField(obj, path, "category", true, &violations)
	if strings.TrimSpace(b.Category) == "" {
		violations = append(violations, Violation{Path: path + ".category", Message: "must not be empty"})
	}
	b.TargetAmount = amountField(obj, path, "targetAmount", &violations)
	if b.TargetAmount.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, Violation{Path: path + ".targetAmount", Message: "must be positive"})
	}
	b.MonthYear = stringField(obj, path, "monthYear", true, &violations)
	if b.MonthYear != "" {
		if _, _, err := util.ParseMonthKey(b.MonthYear); err != nil {
			violations = append(violations, Violation{Path: path + ".monthYear", Message: "must match YYYY-MM"})
		}
	}
	b.AllowRollover = boolField(obj, path, "allowRollover", false, &violations)
	b.UserID = domain.DefaultUserID

	return b, violations
}

func decodeBackupRecurring(data json.RawMessage, index int) (*domain.RecurringTransaction, []Violation) {
	path := fmt.Sprintf("recurringTransactions[%d]", index)
	obj, vio := rawObject(data, path)
	if vio != nil {
		return nil, vio
	}

	var violations []Violation
	rt := &domain.RecurringTransaction{}

	rt.ID = stringField(obj, path, "id", false, &violations)
	rt.Description = stringField(obj, path, "description", true, &violations)
	rt.Amount = amountField(obj, path, "amount", &violations)
	if rt.Amount.LessThanOrEqual(decimal.Zero) {
		violations = append(violations, Violation{Path: path + ".amount", Message: "must be positive"})
	}
	rt.Type = transactionTypeField(obj, path, &violations)
	rt.Category = stringField(obj, path, "category", true, &violations)

	freq := stringField(obj, path, "frequency", true, &violations)
	rt.Frequency = domain.Frequency(freq)
	if freq != "" && !domain.ValidFrequency(rt.Frequency) {
		violations = append(violations, Violation{Path: path + ".frequency", Message: "unknown frequency"})
	}

	if d := dateField(obj, path, "startDate", true, &violations); d != nil {
		rt.StartDate = *d
	}
	rt.EndDate = dateField(obj, path, "endDate", false, &violations)
	if d := dateField(obj, path, "nextDueDate", true, &violations); d != nil {
		rt.NextDueDate = *d
	}
	rt.LastGeneratedDate = dateField(obj, path, "lastGeneratedDate", false, &violations)

	if _, ok := obj["isActive"]; ok {
		rt.IsActive = boolField(obj, path, "isActive", false, &violations)
	} else {
		rt.IsActive = true
	}
	rt.Tags = tagsField(obj, path, &violations)
	rt.UserID = domain.DefaultUserID

	return rt, violations
}
