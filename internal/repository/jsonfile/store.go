package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Collection keys. Each collection is one JSON file in the data directory.
const (
	CollectionTransactions     = "transactions"
	CollectionBudgets          = "budgets"
	CollectionRecurring        = "recurring_transactions"
	CollectionSettings         = "settings"
	CollectionLastRecurringRun = "last_recurring_run"
)

// Store is a key-value JSON snapshot store: one file per collection,
// always read and written whole. A mutex serializes writers within the
// process; concurrent mutation from other processes is last-write-wins.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a Store rooted at dir, creating the directory if needed
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Load reads a collection into v. A missing file leaves v untouched, and
// malformed stored data is logged and treated as empty rather than failing
// the caller: availability over strict correctness.
func (s *Store) Load(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		log.Warn().Err(err).Str("collection", collection).Msg("Failed to read collection, treating as empty")
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		log.Warn().Err(err).Str("collection", collection).Msg("Malformed collection data, treating as empty")
		return nil
	}
	return nil
}

// Save writes v as the collection's full snapshot. The write goes to a
// temp file first and is renamed into place so readers never see a
// partial snapshot.
func (s *Store) Save(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection %s: %w", collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file for %s: %w", collection, err)
	}

	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection %s: %w", collection, err)
	}
	return nil
}
