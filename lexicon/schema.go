package lexicon

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaSQL returns the DDL for the lexicon tables. dim controls the
// vec0 virtual table dimension.
func schemaSQL(dim int) string {
	return fmt.Sprintf(`
-- Term registry
CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY,
    term TEXT NOT NULL UNIQUE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Term vectors via sqlite-vec
CREATE VIRTUAL TABLE IF NOT EXISTS vec_terms USING vec0(
    term_id INTEGER PRIMARY KEY,
    embedding float[%d]
);
`, dim)
}

// migration is a single schema migration. New migrations are
// appended at the end; never modify existing entries.
type migration struct {
	version     int
	description string
	apply       func(tx *sql.Tx) error
}

var migrations = []migration{
	{
		version:     1,
		description: "initial schema (applied via schemaSQL)",
		apply:       func(tx *sql.Tx) error { return nil },
	},
}

// migrate runs all pending schema migrations.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := s.inTx(ctx, func(tx *sql.Tx) error {
			if err := m.apply(tx); err != nil {
				return err
			}
			_, err := tx.Exec(
				`INSERT INTO schema_version (version, description) VALUES (?, ?)`,
				m.version, m.description)
			return err
		}); err != nil {
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
	}
	return nil
}
