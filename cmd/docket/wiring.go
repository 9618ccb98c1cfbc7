package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/docket/internal/config"
	"github.com/MikeSquared-Agency/docket/internal/hearing"
	"github.com/MikeSquared-Agency/docket/internal/hermes"
	"github.com/MikeSquared-Agency/docket/internal/judiciary"
	"github.com/MikeSquared-Agency/docket/internal/metrics"
	"github.com/MikeSquared-Agency/docket/internal/processor"
	"github.com/MikeSquared-Agency/docket/internal/slack"
	"github.com/MikeSquared-Agency/docket/internal/store"
)

// pipeline holds the processor and the optional collaborators opened for it.
type pipeline struct {
	proc    *processor.Processor
	metrics *metrics.Metrics
	db      *store.Store
	hermes  *hermes.Client
	slack   *slack.Poster
}

func (p *pipeline) Close() {
	if p.hermes != nil {
		p.hermes.Close()
	}
	if p.db != nil {
		p.db.Close()
	}
}

// openPipeline connects whatever collaborators cfg enables and builds the processor.
func openPipeline(ctx context.Context, cfg config.Config, c *cli.Command) (*pipeline, error) {
	cutoff, err := hearing.ParseClock(c.String("cutoff"))
	if err != nil {
		return nil, fmt.Errorf("invalid cutoff: %w", err)
	}

	courts := cfg.Courts
	if v := c.String("courts"); v != "" {
		courts = splitCourts(v)
	}

	p := &pipeline{metrics: metrics.New()}
	opts := processor.Options{
		Courts:      courts,
		Cutoff:      &cutoff,
		Concurrency: c.Int("concurrency"),
		CacheTTL:    cfg.CacheTTL,
		Metrics:     p.metrics,
	}

	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		p.db = db
		opts.Cache = db
		opts.RunLog = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, running without cache or run history")
	}

	if cfg.NatsURL != "" {
		hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			p.Close()
			return nil, err
		}
		p.hermes = hc
		opts.Notifiers = append(opts.Notifiers, hermes.NewNotifier(hc))
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		p.slack = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		opts.Notifiers = append(opts.Notifiers, p.slack)
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	fetcher := judiciary.NewClient(cfg.JudiciaryURL, cfg.FetchTimeout)
	p.proc = processor.New(fetcher, opts, slog.Default())
	return p, nil
}

func splitCourts(v string) []string {
	var out []string
	for _, c := range strings.Split(v, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
