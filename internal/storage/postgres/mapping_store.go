package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"moneyline-lab/internal/domain"
	"moneyline-lab/internal/storage"
)

// MappingStore implements storage.MappingStore using PostgreSQL.
type MappingStore struct {
	pool *Pool
}

// NewMappingStore creates a new PostgreSQL mapping store.
func NewMappingStore(pool *Pool) *MappingStore {
	return &MappingStore{pool: pool}
}

// Compile-time check
var _ storage.MappingStore = (*MappingStore)(nil)

// Upsert writes mappings in a single transaction. A mapping whose event id
// already exists is overwritten. Returns the number of mappings written.
func (s *MappingStore) Upsert(ctx context.Context, mappings []*domain.EntityMapping) (int, error) {
	if len(mappings) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO game_mappings (event_id, result_event_id, match_method, matched_ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO UPDATE SET
			result_event_id = EXCLUDED.result_event_id,
			match_method = EXCLUDED.match_method,
			matched_ts = EXCLUDED.matched_ts
	`

	for _, m := range mappings {
		_, err := tx.Exec(ctx, query,
			m.EventID,
			m.ResultEventID,
			string(m.Method),
			m.MatchedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("upsert mapping: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(mappings), nil
}

// List returns all mappings ordered by event id.
func (s *MappingStore) List(ctx context.Context) ([]*domain.EntityMapping, error) {
	query := `
		SELECT event_id, result_event_id, match_method, matched_ts
		FROM game_mappings
		ORDER BY event_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	return scanMappings(rows)
}

// scanMappings scans rows into mapping structs.
func scanMappings(rows pgx.Rows) ([]*domain.EntityMapping, error) {
	var mappings []*domain.EntityMapping

	for rows.Next() {
		m := &domain.EntityMapping{}
		var methodStr string

		err := rows.Scan(
			&m.EventID,
			&m.ResultEventID,
			&methodStr,
			&m.MatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}

		m.Method = domain.MatchMethod(methodStr)
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}

	return mappings, nil
}
