package postgres

import (
	"context"
	"fmt"
	"io/fs"
)

// Migrate applies every *.sql file of schema in one transaction. The files
// must be idempotent.
func Migrate(ctx context.Context, db DB, schema fs.FS) error {
	files, err := fs.Glob(schema, "*.sql")
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, name := range files {
		sql, err := fs.ReadFile(schema, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return tx.Commit(ctx)
}
