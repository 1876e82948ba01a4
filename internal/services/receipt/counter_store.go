package receipt

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCounterStore backs receipt counters with a Postgres table.
// The upsert below is the whole concurrency story: one statement
// creates the (tenant, year) row at 1 or advances it, and returns the
// value this caller owns. There is deliberately no way to read the
// counter without advancing it.
type PostgresCounterStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCounterStore creates a counter store on the given pool.
func NewPostgresCounterStore(pool *pgxpool.Pool) *PostgresCounterStore {
	return &PostgresCounterStore{pool: pool}
}

// IncrementAndGet atomically advances the (tenant, year) counter and
// returns the new value. Row-level locking on the upsert serializes
// concurrent callers; each receives a distinct value.
func (s *PostgresCounterStore) IncrementAndGet(ctx context.Context, tenantID uuid.UUID, year int) (int64, error) {
	var value int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO receipt_counters (tenant_id, year, last_value, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (tenant_id, year)
		DO UPDATE SET last_value = receipt_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, tenantID, year).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("incrementing receipt counter (%s, %d): %w", tenantID, year, err)
	}
	return value, nil
}
