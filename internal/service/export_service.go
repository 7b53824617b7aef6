package service

import (
	"strings"

	"github.com/clarityledger/clarity-backend/internal/domain"
)

// csvHeader is the fixed column order for transaction exports
var csvHeader = []string{"ID", "Date", "Description", "Amount", "Type", "Category", "Tags"}

// escapeCSVField quotes a field per RFC 4180: fields containing a comma,
// double quote, or newline are enclosed in double quotes with internal
// quotes doubled.
func escapeCSVField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

// TransactionsToCSV renders transactions as CSV, one row per transaction.
// Multiple tags are joined with ';' inside the single Tags field.
func TransactionsToCSV(transactions []*domain.Transaction) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))

	for _, tx := range transactions {
		row := []string{
			escapeCSVField(tx.ID),
			escapeCSVField(tx.Date.String()),
			escapeCSVField(tx.Description),
			tx.Amount.String(),
			escapeCSVField(string(tx.Type)),
			escapeCSVField(tx.Category),
			escapeCSVField(strings.Join(tx.Tags, ";")),
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(row, ","))
	}
	return b.String()
}
