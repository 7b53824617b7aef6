package jsonfile

import (
	"fmt"
	"time"

	"github.com/clarityledger/clarity-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TransactionRepository implements domain.TransactionRepository over the
// JSON snapshot store
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// newRecordID builds a collision-resistant composite ID: a monotonic
// timestamp plus a random suffix, unique across the process lifetime.
func newRecordID(prefix string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, time.Now().UTC().Format(time.RFC3339Nano), uuid.NewString()[:8])
}

// GetAll returns every stored transaction, unordered
func (r *TransactionRepository) GetAll() ([]*domain.Transaction, error) {
	transactions := []*domain.Transaction{}
	if err := r.store.Load(CollectionTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Create generates an ID, stamps the owner marker, appends the transaction,
// and persists the full collection
func (r *TransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	transactions, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	tx.ID = newRecordID("txn")
	tx.UserID = domain.DefaultUserID
	transactions = append(transactions, tx)

	if err := r.store.Save(CollectionTransactions, transactions); err != nil {
		return nil, err
	}
	return tx, nil
}

// Delete removes the matching transaction. A missing ID is a logged no-op.
func (r *TransactionRepository) Delete(id string) error {
	transactions, err := r.GetAll()
	if err != nil {
		return err
	}

	filtered := transactions[:0]
	for _, tx := range transactions {
		if tx.ID != id {
			filtered = append(filtered, tx)
		}
	}

	if len(filtered) == len(transactions) {
		log.Warn().Str("transaction_id", id).Msg("Transaction not found for deletion")
		return nil
	}
	return r.store.Save(CollectionTransactions, filtered)
}

// SaveAll replaces the whole transaction collection. Used by backup import.
func (r *TransactionRepository) SaveAll(transactions []*domain.Transaction) error {
	for _, tx := range transactions {
		tx.UserID = domain.DefaultUserID
	}
	return r.store.Save(CollectionTransactions, transactions)
}
