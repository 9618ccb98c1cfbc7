package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

// Store persists classified hearing records and run history in Postgres.
//
// Tables (managed outside this service):
//
//	hearing_records(listing_date date, court text, seq int, time text, hearing_type text,
//	                accused text, indicator text,
//	                primary key (listing_date, court, seq))
//	hearing_coverage(listing_date date, court text, fetched_at timestamptz,
//	                 primary key (listing_date, court))
//	pipeline_runs(id uuid primary key, listing_date date, from_cache bool, no_data bool,
//	              records int, failures int, failed_courts text[], started_at timestamptz,
//	              finished_at timestamptz)
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
