package backfill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/docket/internal/processor"
)

// Config holds the backfill command configuration.
type Config struct {
	Since     time.Time
	Until     time.Time
	StatePath string
	// Pause is slept between dates to stay gentle with the listing service.
	Pause time.Duration
}

// DateRunner runs the pipeline for one listing date.
type DateRunner interface {
	Run(ctx context.Context, date time.Time) (*processor.Result, error)
}

// SummaryPoster receives the end-of-backfill summary. Optional.
type SummaryPoster interface {
	PostThread(ctx context.Context, threadTS, text string) error
}

// DateSummary is the outcome of one date within a backfill.
type DateSummary struct {
	Date     string
	Records  int
	Failures int
	NoData   bool
	Err      string
}

// Runner walks a date range and runs the pipeline for each date.
type Runner struct {
	cfg    Config
	runner DateRunner
	poster SummaryPoster
	logger *slog.Logger
}

// NewRunner creates a backfill runner. poster may be nil.
func NewRunner(cfg Config, runner DateRunner, poster SummaryPoster, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		runner: runner,
		poster: poster,
		logger: logger,
	}
}

// Dates lists the listing dates from since to until inclusive.
func Dates(since, until time.Time) []time.Time {
	since = truncateDay(since)
	until = truncateDay(until)
	var out []time.Time
	for d := since; !d.After(until); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Run executes the backfill. Dates already in the state file are skipped.
// A failed date is recorded and retried on the next invocation.
func (r *Runner) Run(ctx context.Context) error {
	if r.cfg.Since.IsZero() || r.cfg.Until.IsZero() {
		return errors.New("backfill needs both since and until")
	}
	if r.cfg.Until.Before(r.cfg.Since) {
		return fmt.Errorf("until %s is before since %s",
			r.cfg.Until.Format(processor.DateLayout), r.cfg.Since.Format(processor.DateLayout))
	}

	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	var pending []time.Time
	for _, d := range Dates(r.cfg.Since, r.cfg.Until) {
		if !state.IsProcessed(d.Format(processor.DateLayout)) {
			pending = append(pending, d)
		}
	}
	state.DatesRemaining = len(pending)
	r.logger.Info("dates to process", "total", len(pending), "state", state.Path())

	var summaries []DateSummary
	for i, d := range pending {
		if err := ctx.Err(); err != nil {
			return r.interrupted(ctx, state, summaries)
		}

		date := d.Format(processor.DateLayout)
		ds := DateSummary{Date: date}

		res, err := r.runner.Run(ctx, d)
		if err != nil {
			if ctx.Err() != nil {
				return r.interrupted(ctx, state, summaries)
			}
			r.logger.Error("backfill date failed", "date", date, "error", err)
			state.AddError(fmt.Sprintf("run %s: %v", date, err))
			ds.Err = err.Error()
		} else {
			ds.Records = len(res.Records)
			ds.Failures = len(res.Failures)
			ds.NoData = res.NoData
			state.RecordsFound += ds.Records
			state.CourtFailures += ds.Failures
			state.MarkProcessed(date)
			r.logger.Info("date processed",
				"date", date,
				"records", ds.Records,
				"failures", ds.Failures,
				"no_data", ds.NoData,
			)
		}

		summaries = append(summaries, ds)
		state.DatesRemaining--
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save backfill state", "error", err)
		}

		if r.cfg.Pause > 0 && i < len(pending)-1 {
			select {
			case <-ctx.Done():
				return r.interrupted(ctx, state, summaries)
			case <-time.After(r.cfg.Pause):
			}
		}
	}

	if err := state.Save(); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	r.postSummary(ctx, summaries)

	r.logger.Info("backfill complete",
		"dates_processed", len(summaries),
		"records_found", state.RecordsFound,
		"errors", len(state.Errors),
	)
	return nil
}

func (r *Runner) interrupted(ctx context.Context, state *State, summaries []DateSummary) error {
	r.logger.Info("backfill interrupted, saving state")
	if err := state.Save(); err != nil {
		r.logger.Warn("failed to save backfill state", "error", err)
	}
	r.postSummary(context.WithoutCancel(ctx), summaries)
	return ctx.Err()
}

// postSummary posts the backfill summary to Slack, or logs it when no poster is configured.
func (r *Runner) postSummary(ctx context.Context, summaries []DateSummary) {
	if len(summaries) == 0 {
		return
	}

	text := FormatSummary(summaries)
	if r.poster == nil {
		r.logger.Info("backfill summary (no Slack configured)", "summary", text)
		return
	}
	if err := r.poster.PostThread(ctx, "", text); err != nil {
		r.logger.Warn("failed to post backfill summary to Slack, logging instead",
			"error", err,
			"summary", text,
		)
	}
}

// FormatSummary renders one line per date.
func FormatSummary(summaries []DateSummary) string {
	var sb strings.Builder
	sb.WriteString("*Docket Backfill Summary*\n")

	total := 0
	for _, s := range summaries {
		total += s.Records
		fmt.Fprintf(&sb, "  - %s: ", s.Date)
		switch {
		case s.Err != "":
			fmt.Fprintf(&sb, "error: %s", s.Err)
		case s.NoData:
			sb.WriteString("no data")
		default:
			fmt.Fprintf(&sb, "%d records", s.Records)
		}
		if s.Failures > 0 {
			fmt.Fprintf(&sb, " (%d courts failed)", s.Failures)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n%d dates, %d records\n", len(summaries), total)
	return sb.String()
}
