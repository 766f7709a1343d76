package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// KPIStore implements storage.KPIStore using PostgreSQL.
type KPIStore struct {
	pool *Pool
}

// NewKPIStore creates a new PostgreSQL KPI store.
func NewKPIStore(pool *Pool) *KPIStore {
	return &KPIStore{pool: pool}
}

// Compile-time check
var _ storage.KPIStore = (*KPIStore)(nil)

// Rebuild replaces the full KPI table in a single transaction.
func (s *KPIStore) Rebuild(ctx context.Context, entries []*domain.KPIEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM kpi_entries`); err != nil {
		return fmt.Errorf("clear kpi entries: %w", err)
	}

	query := `INSERT INTO kpi_entries (kpi_name, kpi_value) VALUES ($1, $2)`

	for _, e := range entries {
		if _, err := tx.Exec(ctx, query, e.Name, e.Value); err != nil {
			if isDuplicateKeyError(err) {
				return fmt.Errorf("insert kpi %s: %w", e.Name, storage.ErrDuplicateKey)
			}
			return fmt.Errorf("insert kpi: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// List returns all KPI entries ordered by name.
func (s *KPIStore) List(ctx context.Context) ([]*domain.KPIEntry, error) {
	query := `SELECT kpi_name, kpi_value FROM kpi_entries ORDER BY kpi_name ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query kpi entries: %w", err)
	}
	defer rows.Close()

	return scanKPIEntries(rows)
}

// scanKPIEntries scans rows into KPI entry structs.
func scanKPIEntries(rows pgx.Rows) ([]*domain.KPIEntry, error) {
	var entries []*domain.KPIEntry

	for rows.Next() {
		e := &domain.KPIEntry{}
		if err := rows.Scan(&e.Name, &e.Value); err != nil {
			return nil, fmt.Errorf("scan kpi entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kpi entries: %w", err)
	}

	return entries, nil
}
