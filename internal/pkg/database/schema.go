package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// EnsureSchema applies the embedded schema files in name order. Every statement
// is idempotent so it is safe to run on each start.
func EnsureSchema(ctx context.Context, db *DB) error {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return fmt.Errorf("failed to list schema files: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		sql, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
		slog.Info("Applied schema file", "file", name)
	}
	return nil
}
