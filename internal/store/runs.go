package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/docket/internal/processor"
)

// RunRow is one entry of the pipeline run history.
type RunRow struct {
	ID           uuid.UUID `json:"id"`
	ListingDate  string    `json:"listing_date"`
	FromCache    bool      `json:"from_cache"`
	NoData       bool      `json:"no_data"`
	Records      int       `json:"records"`
	Failures     int       `json:"failures"`
	FailedCourts []string  `json:"failed_courts"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// RecordRun inserts a finished run into the history.
func (s *Store) RecordRun(ctx context.Context, res *processor.Result) error {
	failed := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failed = append(failed, f.Court)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (id, listing_date, from_cache, no_data, records, failures, failed_courts, started_at, finished_at)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)`,
		res.RunID, res.Date, res.FromCache, res.NoData, len(res.Records), len(res.Failures), failed, res.StartedAt, res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, to_char(listing_date, 'YYYY-MM-DD'), from_cache, no_data, records, failures, failed_courts, started_at, finished_at
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.ListingDate, &r.FromCache, &r.NoData, &r.Records, &r.Failures, &r.FailedCourts, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
