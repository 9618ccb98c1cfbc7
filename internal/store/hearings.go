package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MikeSquared-Agency/docket/internal/hearing"
)

// Lookup returns the cached records for courts on a listing date. It is a hit
// only when every court was fetched within maxAge; records come back grouped
// in the order of courts.
func (s *Store) Lookup(ctx context.Context, date time.Time, courts []string, maxAge time.Duration) ([]hearing.Record, bool, error) {
	courts = uniqueCourts(courts)
	if len(courts) == 0 {
		return nil, false, nil
	}
	day := date.Format(dateLayout)

	var covered int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM hearing_coverage
		WHERE listing_date = $1::date AND court = ANY($2) AND fetched_at >= $3`,
		day, courts, time.Now().Add(-maxAge),
	).Scan(&covered)
	if err != nil {
		return nil, false, fmt.Errorf("query coverage: %w", err)
	}
	if covered < len(courts) {
		return nil, false, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT court, time, hearing_type, accused, indicator
		FROM hearing_records
		WHERE listing_date = $1::date AND court = ANY($2)
		ORDER BY court, seq`,
		day, courts,
	)
	if err != nil {
		return nil, false, fmt.Errorf("query hearing records: %w", err)
	}
	defer rows.Close()

	var records []hearing.Record
	for rows.Next() {
		var (
			r         hearing.Record
			indicator string
		)
		if err := rows.Scan(&r.Court, &r.Time, &r.HearingType, &r.Accused, &indicator); err != nil {
			return nil, false, fmt.Errorf("scan hearing record: %w", err)
		}
		r.Indicator = hearing.Indicator(indicator)
		if r.Indicator == "" {
			r.Indicator = hearing.Classify(r.HearingType)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate hearing records: %w", err)
	}

	return orderByCourts(courts, records), true, nil
}

// Save marks courts as fetched for a listing date and replaces their records.
// Records for other courts on that date are left alone.
func (s *Store) Save(ctx context.Context, date time.Time, courts []string, records []hearing.Record) error {
	courts = uniqueCourts(courts)
	if len(courts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	day := date.Format(dateLayout)
	if _, err := tx.Exec(ctx, `DELETE FROM hearing_records WHERE listing_date = $1::date AND court = ANY($2)`, day, courts); err != nil {
		return fmt.Errorf("clear hearing records: %w", err)
	}

	seq := make(map[string]int, len(courts))
	for _, r := range records {
		if !slices.Contains(courts, r.Court) {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO hearing_records (listing_date, court, seq, time, hearing_type, accused, indicator)
			VALUES ($1::date, $2, $3, $4, $5, $6, $7)`,
			day, r.Court, seq[r.Court], r.Time, r.HearingType, r.Accused, string(r.Indicator),
		)
		if err != nil {
			return fmt.Errorf("insert hearing record: %w", err)
		}
		seq[r.Court]++
	}

	for _, court := range courts {
		_, err = tx.Exec(ctx, `
			INSERT INTO hearing_coverage (listing_date, court, fetched_at)
			VALUES ($1::date, $2, now())
			ON CONFLICT (listing_date, court) DO UPDATE SET fetched_at = EXCLUDED.fetched_at`,
			day, court,
		)
		if err != nil {
			return fmt.Errorf("mark court fetched: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func uniqueCourts(courts []string) []string {
	out := make([]string, 0, len(courts))
	for _, c := range courts {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}

// orderByCourts regroups records by the position of their court in courts,
// keeping the relative order within each court.
func orderByCourts(courts []string, records []hearing.Record) []hearing.Record {
	byCourt := make(map[string][]hearing.Record, len(courts))
	for _, r := range records {
		byCourt[r.Court] = append(byCourt[r.Court], r)
	}
	out := make([]hearing.Record, 0, len(records))
	for _, c := range courts {
		out = append(out, byCourt[c]...)
	}
	return out
}
