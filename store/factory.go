package store

import (
	"fmt"
	"strings"

	"github.com/kweller/go-prodcat/catalog"
)

// New creates a catalog store based on the DSN.
// - Empty DSN: SQLite at data/prodcat.db
// - postgres:// or postgresql://: PostgreSQL with pgvector
// - Anything else: SQLite at the specified path
func New(dsn string, policy Policy) (catalog.Store, error) {
	if dsn == "" {
		return NewSQLiteStore("data/prodcat.db", policy)
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		s, err := NewPostgresStore(dsn, policy)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return s, nil
	}

	return NewSQLiteStore(dsn, policy)
}
