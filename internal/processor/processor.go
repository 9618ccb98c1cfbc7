package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/docket/internal/extractor"
	"github.com/MikeSquared-Agency/docket/internal/hearing"
	"github.com/MikeSquared-Agency/docket/internal/judiciary"
	"github.com/MikeSquared-Agency/docket/internal/metrics"
	"github.com/MikeSquared-Agency/docket/internal/summary"
)

// DateLayout is the listing-date format used in results, events and the API.
const DateLayout = "2006-01-02"

// Fetcher retrieves one court's hearing list for a UTC window.
type Fetcher interface {
	Fetch(ctx context.Context, court string, start, end time.Time) (judiciary.Payload, error)
}

// Cache stores classified records per listing date and court. Lookup reports
// a hit only when every requested court was fetched within maxAge, and returns
// their records in court order. Save marks courts as fetched and replaces
// their records; a court with no hearings is saved with no records.
type Cache interface {
	Lookup(ctx context.Context, date time.Time, courts []string, maxAge time.Duration) ([]hearing.Record, bool, error)
	Save(ctx context.Context, date time.Time, courts []string, records []hearing.Record) error
}

// RunLog records finished runs.
type RunLog interface {
	RecordRun(ctx context.Context, res *Result) error
}

// Notifier is told about every finished run.
type Notifier interface {
	NotifyRun(ctx context.Context, res *Result) error
}

// Options configures a Processor. Zero values select defaults.
type Options struct {
	Courts []string
	// Cutoff defaults to 12:30 PM when nil.
	Cutoff      *hearing.Clock
	Concurrency int
	CacheTTL    time.Duration
	Cache       Cache
	RunLog      RunLog
	Notifiers   []Notifier
	Metrics     *metrics.Metrics
}

// CourtFailure reports a court that contributed no records because its fetch failed.
type CourtFailure struct {
	Court string `json:"court"`
	Kind  string `json:"kind"`
	Error string `json:"error"`

	Err error `json:"-"`
}

// Result is the outcome of one pipeline run for one listing date.
type Result struct {
	RunID      uuid.UUID               `json:"run_id"`
	Date       string                  `json:"date"`
	Courts     []string                `json:"courts"`
	AM         []hearing.AggregatedRow `json:"am"`
	PM         []hearing.AggregatedRow `json:"pm"`
	Failures   []CourtFailure          `json:"failures"`
	NoData     bool                    `json:"no_data"`
	FromCache  bool                    `json:"from_cache"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`

	Records []hearing.Record `json:"-"`
}

// Processor orchestrates fetch, extraction, classification, session split and aggregation.
type Processor struct {
	fetcher     Fetcher
	courts      []string
	cutoff      hearing.Clock
	concurrency int
	cacheTTL    time.Duration
	cache       Cache
	runLog      RunLog
	notifiers   []Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func New(f Fetcher, opts Options, logger *slog.Logger) *Processor {
	p := &Processor{
		fetcher:     f,
		courts:      append([]string(nil), opts.Courts...),
		cutoff:      summary.DefaultCutoff,
		concurrency: opts.Concurrency,
		cacheTTL:    opts.CacheTTL,
		cache:       opts.Cache,
		runLog:      opts.RunLog,
		notifiers:   opts.Notifiers,
		metrics:     opts.Metrics,
		logger:      logger,
	}
	if len(p.courts) == 0 {
		p.courts = append([]string(nil), hearing.DefaultCourts...)
	}
	if opts.Cutoff != nil {
		p.cutoff = *opts.Cutoff
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}
	if p.cacheTTL <= 0 {
		p.cacheTTL = 30 * time.Minute
	}
	if p.metrics == nil {
		p.metrics = metrics.New()
	}
	return p
}

// Courts returns the court list the processor polls, in order.
func (p *Processor) Courts() []string {
	return append([]string(nil), p.courts...)
}

// Run produces the AM and PM summaries for a listing date. Per-court fetch
// failures are reported in the result; only an unparsable record time fails
// the run.
func (p *Processor) Run(ctx context.Context, date time.Time) (*Result, error) {
	res := &Result{
		RunID:     uuid.New(),
		Date:      date.Format(DateLayout),
		Courts:    p.Courts(),
		AM:        []hearing.AggregatedRow{},
		PM:        []hearing.AggregatedRow{},
		Failures:  []CourtFailure{},
		StartedAt: time.Now().UTC(),
	}
	logger := p.logger.With("run_id", res.RunID, "date", res.Date)

	records, cached := p.lookupCache(ctx, date, logger)
	if cached {
		res.FromCache = true
		logger.Info("using cached records", "records", len(records))
	} else {
		records, res.Failures = p.collect(ctx, date, logger)
	}
	res.Records = records

	if len(records) == 0 {
		res.NoData = true
		res.FinishedAt = time.Now().UTC()
		logger.Warn("no data fetched for date", "failures", len(res.Failures))
		p.metrics.ObserveRun("no_data")
		p.finish(ctx, res, logger)
		return res, nil
	}

	am, pm, err := summary.Split(records, p.cutoff)
	if err != nil {
		p.metrics.ObserveRun("error")
		logger.Error("session split failed", "error", err)
		return nil, fmt.Errorf("split sessions: %w", err)
	}
	res.AM = summary.Aggregate(hearing.SessionAM, am)
	res.PM = summary.Aggregate(hearing.SessionPM, pm)
	res.FinishedAt = time.Now().UTC()

	if !cached && p.cache != nil {
		fetched := fetchedCourts(p.courts, res.Failures)
		if err := p.cache.Save(ctx, date, fetched, records); err != nil {
			logger.Warn("failed to save records to cache", "error", err)
		}
	}

	outcome := "ok"
	if cached {
		outcome = "cached"
	}
	p.metrics.ObserveRun(outcome)

	logger.Info("run complete",
		"records", len(records),
		"am_courts", len(res.AM),
		"pm_courts", len(res.PM),
		"failures", len(res.Failures),
		"from_cache", cached,
	)

	p.finish(ctx, res, logger)
	return res, nil
}

// HandleRefreshRequested is the NATS handler for on-demand runs. The payload is {"date":"2006-01-02"}.
func (p *Processor) HandleRefreshRequested(subject string, data []byte) {
	ctx := context.Background()

	var evt struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse refresh event", "subject", subject, "error", err)
		return
	}
	date, err := time.Parse(DateLayout, evt.Date)
	if err != nil {
		p.logger.Error("invalid refresh date", "date", evt.Date, "error", err)
		return
	}
	if _, err := p.Run(ctx, date); err != nil {
		p.logger.Error("refresh run failed", "date", evt.Date, "error", err)
	}
}

func (p *Processor) lookupCache(ctx context.Context, date time.Time, logger *slog.Logger) ([]hearing.Record, bool) {
	if p.cache == nil {
		return nil, false
	}
	records, ok, err := p.cache.Lookup(ctx, date, p.courts, p.cacheTTL)
	if err != nil {
		logger.Warn("cache lookup failed, running full pipeline", "error", err)
		return nil, false
	}
	if !ok || len(records) == 0 {
		return nil, false
	}
	return records, true
}

type courtResult struct {
	records []hearing.Record
	failure *CourtFailure
}

// collect fetches every court through a bounded worker pool. Each court
// writes only its own slot, so the merged records follow court-list order.
func (p *Processor) collect(ctx context.Context, date time.Time, logger *slog.Logger) ([]hearing.Record, []CourtFailure) {
	start, end := judiciary.Window(date)
	results := make([]courtResult, len(p.courts))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, court := range p.courts {
		g.Go(func() error {
			results[i] = p.processCourt(ctx, court, start, end, logger)
			return nil
		})
	}
	_ = g.Wait()

	var records []hearing.Record
	failures := []CourtFailure{}
	for _, r := range results {
		if r.failure != nil {
			failures = append(failures, *r.failure)
			continue
		}
		records = append(records, r.records...)
	}
	return records, failures
}

func (p *Processor) processCourt(ctx context.Context, court string, start, end time.Time, logger *slog.Logger) courtResult {
	began := time.Now()
	payload, err := p.fetcher.Fetch(ctx, court, start, end)
	if err != nil {
		kind := failureKind(err)
		p.metrics.ObserveFetch(court, kind, time.Since(began))
		logger.Warn("court fetch failed", "court", court, "kind", kind, "error", err)
		return courtResult{failure: &CourtFailure{Court: court, Kind: kind, Error: err.Error(), Err: err}}
	}
	p.metrics.ObserveFetch(court, "ok", time.Since(began))

	listing := extractor.Parse(payload)
	records := make([]hearing.Record, 0, listing.Len())
	for e := range listing.Entries() {
		rec := hearing.NewRecord(court, e.Time, e.HearingType, e.Accused)
		p.metrics.AddRecord(string(rec.Indicator))
		records = append(records, rec)
	}
	if dropped := listing.Dropped(); dropped > 0 {
		p.metrics.AddDropped(dropped)
		logger.Debug("misaligned markup truncated",
			"court", court,
			"times", len(listing.Times),
			"hearing_types", len(listing.HearingTypes),
			"headers", len(listing.Headers),
		)
	}
	logger.Debug("court processed", "court", court, "records", len(records))
	return courtResult{records: records}
}

func (p *Processor) finish(ctx context.Context, res *Result, logger *slog.Logger) {
	if p.runLog != nil {
		if err := p.runLog.RecordRun(ctx, res); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}
	for _, n := range p.notifiers {
		if err := n.NotifyRun(ctx, res); err != nil {
			logger.Warn("run notification failed", "error", err)
		}
	}
}

// fetchedCourts returns the courts, in order, whose fetch did not fail.
func fetchedCourts(courts []string, failures []CourtFailure) []string {
	failed := make(map[string]bool, len(failures))
	for _, f := range failures {
		failed[f.Court] = true
	}
	out := make([]string, 0, len(courts))
	for _, c := range courts {
		if !failed[c] {
			out = append(out, c)
		}
	}
	return out
}

func failureKind(err error) string {
	if errors.Is(err, judiciary.ErrDecode) {
		return "decode"
	}
	return "network"
}
