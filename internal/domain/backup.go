package domain

// Backup document versions accepted on import. Version 1.0.1 added the OCR
// model setting, 1.0.2 added recurring transactions.
const (
	BackupVersion100 = "1.0.0"
	BackupVersion101 = "1.0.1"
	BackupVersion102 = "1.0.2"

	// CurrentBackupVersion is the version written on export
	CurrentBackupVersion = BackupVersion102
)

// AcceptedBackupVersions lists every importable document version
var AcceptedBackupVersions = []string{BackupVersion100, BackupVersion101, BackupVersion102}

// BackupDocument is the backup/restore file format: one JSON document
// holding settings plus every entity collection.
type BackupDocument struct {
	Version               string                  `json:"version"`
	Settings              Settings                `json:"settings"`
	Transactions          []*Transaction          `json:"transactions"`
	Budgets               []*Budget               `json:"budgets"`
	RecurringTransactions []*RecurringTransaction `json:"recurringTransactions,omitempty"`
}
