package library

import (
	"fmt"
	"os"
	"path/filepath"
)

// MemberStore persists the roster as an ordered list.
type MemberStore interface {
	LoadMembers() ([]Member, error)
	SaveMembers([]Member) error
}

// BookStore persists the catalog as an ordered list.
type BookStore interface {
	LoadBooks() ([]Book, error)
	SaveBooks([]Book) error
}

// TransactionStore persists the ledger as an ordered list.
type TransactionStore interface {
	LoadTransactions() ([]Transaction, error)
	SaveTransactions([]Transaction) error
}

// Store is a complete persistence backend. Every Save call replaces the whole
// collection; there are no incremental writes.
type Store interface {
	MemberStore
	BookStore
	TransactionStore
	Close() error
}

// Backend names accepted by OpenStore.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SQLiteFile is the database file name used by the sqlite backend.
const SQLiteFile = "library.db"

// OpenStore opens the named backend rooted at dir.
func OpenStore(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		return NewDatabase(filepath.Join(dir, SQLiteFile))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", backend, BackendFile, BackendSQLite, BackendMemory)
	}
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
