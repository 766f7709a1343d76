// Package migrations applies the embedded schema for both storage engines.
// Every statement is idempotent (CREATE TABLE IF NOT EXISTS): running the
// migrations is how the pipeline guarantees its tables exist before any
// read or write, with no caught-error existence probing.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"moneyline-lab/internal/storage/postgres"
)

// PostgresFS embeds all PostgreSQL migration files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds all ClickHouse migration files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

// sqlFiles lists the .sql entries of an embedded directory in lexical order.
func sqlFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// RunPostgresMigrations applies all embedded SQL files in lexical order.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := sqlFiles(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, file := range files {
		data, err := fs.ReadFile(PostgresFS, "postgres/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}
