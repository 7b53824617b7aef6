package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/clarityledger/clarity-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBackupServiceTest() (*BackupService, *testutil.MockTransactionRepository, *testutil.MockBudgetRepository, *testutil.MockRecurringRepository, *testutil.MockSettingsRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	budgetRepo := testutil.NewMockBudgetRepository()
	recurringRepo := testutil.NewMockRecurringRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	service := NewBackupService(transactionRepo, budgetRepo, recurringRepo, settingsRepo)
	return service, transactionRepo, budgetRepo, recurringRepo, settingsRepo
}

func validBackupDoc() map[string]any {
	return map[string]any{
		"version": domain.BackupVersion102,
		"settings": map[string]any{
			"apiKey":                  "sk-test",
			"modelName":               "deepseek/deepseek-chat:free",
			"ocrModelName":            "qwen/qwen2.5-vl-72b-instruct:free",
			"language":                "en",
			"darkMode":                true,
			"selectedCurrency":        "USD",
			"customIncomeCategories":  []any{"Bonus"},
			"customExpenseCategories": []any{"Pets"},
		},
		"transactions": []any{
			map[string]any{
				"id":          "tx_1",
				"description": "Lunch",
				"amount":      12.5,
				"type":        "EXPENSE",
				"category":    "Food",
				"date":        "2026-03-05",
				"tags":        []any{"work"},
			},
		},
		"budgets": []any{
			map[string]any{
				"id":            "b_1",
				"category":      "Food",
				"targetAmount":  300,
				"monthYear":     "2026-03",
				"allowRollover": true,
			},
		},
		"recurringTransactions": []any{
			map[string]any{
				"id":          "rt_1",
				"description": "Rent",
				"amount":      1200,
				"type":        "EXPENSE",
				"category":    "Housing",
				"frequency":   "monthly",
				"startDate":   "2026-01-01",
				"nextDueDate": "2026-04-01",
				"isActive":    true,
			},
		},
	}
}

func marshalBackup(t *testing.T, doc map[string]any) []byte {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	return data
}

func TestBackupImport_Valid(t *testing.T) {
	service, transactionRepo, budgetRepo, recurringRepo, settingsRepo := setupBackupServiceTest()

	err := service.Import(marshalBackup(t, validBackupDoc()))
	require.NoError(t, err)

	require.Len(t, transactionRepo.Transactions, 1)
	assert.Equal(t, "Lunch", transactionRepo.Transactions[0].Description)
	assert.Equal(t, domain.DefaultUserID, transactionRepo.Transactions[0].UserID)

	require.Len(t, budgetRepo.Budgets, 1)
	assert.True(t, budgetRepo.Budgets[0].AllowRollover)

	require.Len(t, recurringRepo.Templates, 1)
	assert.Equal(t, domain.FrequencyMonthly, recurringRepo.Templates[0].Frequency)

	assert.Equal(t, "sk-test", settingsRepo.Settings.APIKey)
	assert.True(t, settingsRepo.Settings.DarkMode)
	assert.Equal(t, []string{"Pets"}, settingsRepo.Settings.CustomExpenseCategories)
}

func TestBackupImport_MissingIDsFilledIn(t *testing.T) {
	service, transactionRepo, budgetRepo, recurringRepo, _ := setupBackupServiceTest()

	doc := validBackupDoc()
	doc["transactions"] = []any{
		map[string]any{
			"description": "Lunch",
			"amount":      12.5,
			"type":        "EXPENSE",
			"category":    "Food",
			"date":        "2026-03-05",
		},
		map[string]any{
			"description": "Coffee",
			"amount":      4,
			"type":        "EXPENSE",
			"category":    "Food",
			"date":        "2026-03-06",
		},
	}
	budget := doc["budgets"].([]any)[0].(map[string]any)
	delete(budget, "id")
	recurring := doc["recurringTransactions"].([]any)[0].(map[string]any)
	delete(recurring, "id")

	err := service.Import(marshalBackup(t, doc))
	require.NoError(t, err)

	require.Len(t, transactionRepo.Transactions, 2)
	assert.NotEmpty(t, transactionRepo.Transactions[0].ID)
	assert.NotEmpty(t, transactionRepo.Transactions[1].ID)
	assert.NotEqual(t, transactionRepo.Transactions[0].ID, transactionRepo.Transactions[1].ID)

	require.Len(t, budgetRepo.Budgets, 1)
	assert.NotEmpty(t, budgetRepo.Budgets[0].ID)

	require.Len(t, recurringRepo.Templates, 1)
	assert.NotEmpty(t, recurringRepo.Templates[0].ID)
}

func TestBackupImport_AllOrNothing(t *testing.T) {
	service, transactionRepo, budgetRepo, _, _ := setupBackupServiceTest()

	transactionRepo.AddTransaction(&domain.Transaction{ID: "existing", Description: "Keep me"})

	doc := validBackupDoc()
	// One bad budget must reject the entire document, valid records included
	doc["budgets"] = []any{
		map[string]any{
			"category":     "Food",
			"targetAmount": -5,
			"monthYear":    "2026-03",
		},
	}

	err := service.Import(marshalBackup(t, doc))
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.NotEmpty(t, importErr.Violations)

	// Nothing was written
	require.Len(t, transactionRepo.Transactions, 1)
	assert.Equal(t, "existing", transactionRepo.Transactions[0].ID)
	assert.Empty(t, budgetRepo.Budgets)
}

func TestBackupImport_UnsupportedVersion(t *testing.T) {
	service, _, _, _, _ := setupBackupServiceTest()

	doc := validBackupDoc()
	doc["version"] = "2.0.0"

	err := service.Import(marshalBackup(t, doc))
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
}

func TestBackupImport_NotJSON(t *testing.T) {
	service, _, _, _, _ := setupBackupServiceTest()

	err := service.Import([]byte("not json"))
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
}

func TestBackupImport_OldVersionClearsRecurring(t *testing.T) {
	service, _, _, recurringRepo, settingsRepo := setupBackupServiceTest()

	recurringRepo.AddTemplate(&domain.RecurringTransaction{ID: "rt_old", Description: "Stale"})

	doc := validBackupDoc()
	doc["version"] = domain.BackupVersion100
	delete(doc, "recurringTransactions")
	settings := doc["settings"].(map[string]any)
	delete(settings, "ocrModelName")

	err := service.Import(marshalBackup(t, doc))
	require.NoError(t, err)

	// Recurring templates did not exist before 1.0.2
	assert.Empty(t, recurringRepo.Templates)
	// 1.0.0 documents have no OCR model; the default is filled in
	assert.Equal(t, domain.DefaultOCRModel, settingsRepo.Settings.OCRModelName)
}

func TestBackupImport_RecurringIgnoredBelow102(t *testing.T) {
	service, _, _, recurringRepo, _ := setupBackupServiceTest()

	doc := validBackupDoc()
	doc["version"] = domain.BackupVersion101
	// Even a malformed recurring list is ignored on pre-1.0.2 documents
	doc["recurringTransactions"] = []any{map[string]any{"description": 42}}

	err := service.Import(marshalBackup(t, doc))
	require.NoError(t, err)
	assert.Empty(t, recurringRepo.Templates)
}

func TestBackupImport_ViolationPaths(t *testing.T) {
	service, _, _, _, _ := setupBackupServiceTest()

	doc := validBackupDoc()
	doc["transactions"] = []any{
		map[string]any{
			"description": "Bad date",
			"amount":      10,
			"type":        "EXPENSE",
			"category":    "Food",
			"date":        "2026-02-30",
		},
	}

	err := service.Import(marshalBackup(t, doc))
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	require.Len(t, importErr.Violations, 1)
	assert.Equal(t, "transactions[0].date", importErr.Violations[0].Path)
}

func TestBackupExport(t *testing.T) {
	service, transactionRepo, budgetRepo, recurringRepo, _ := setupBackupServiceTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		ID: "tx_1", Description: "Lunch", Amount: decimal.NewFromInt(10),
		Type: domain.TransactionTypeExpense, Category: "Food",
		Date: domain.NewDate(2026, time.March, 5),
	})
	budgetRepo.AddBudget(&domain.Budget{ID: "b_1", Category: "Food", TargetAmount: decimal.NewFromInt(300), MonthYear: "2026-03"})
	recurringRepo.AddTemplate(&domain.RecurringTransaction{ID: "rt_1", Description: "Rent"})

	doc, err := service.Export()
	require.NoError(t, err)

	assert.Equal(t, domain.CurrentBackupVersion, doc.Version)
	assert.Len(t, doc.Transactions, 1)
	assert.Len(t, doc.Budgets, 1)
	assert.Len(t, doc.RecurringTransactions, 1)
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	service, transactionRepo, _, _, _ := setupBackupServiceTest()

	transactionRepo.AddTransaction(&domain.Transaction{
		ID: "tx_1", Description: "Lunch", Amount: decimal.NewFromFloat(12.5),
		Type: domain.TransactionTypeExpense, Category: "Food",
		Date: domain.NewDate(2026, time.March, 5), Tags: []string{"work"},
	})

	doc, err := service.Export()
	require.NoError(t, err)
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	fresh, freshTx, _, _, _ := setupBackupServiceTest()
	require.NoError(t, fresh.Import(data))

	require.Len(t, freshTx.Transactions, 1)
	got := freshTx.Transactions[0]
	assert.Equal(t, "Lunch", got.Description)
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(12.5)))
	assert.Equal(t, "2026-03-05", got.Date.String())
	assert.Equal(t, []string{"work"}, got.Tags)
}
