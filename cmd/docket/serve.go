package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/docket/internal/api"
	"github.com/MikeSquared-Agency/docket/internal/config"
	"github.com/MikeSquared-Agency/docket/internal/hermes"
)

func cmdServe(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the summaries API and answer refresh requests",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP listen port",
				Value: cfg.Port,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			p, err := openPipeline(ctx, cfg, c)
			if err != nil {
				return err
			}
			defer p.Close()

			if p.hermes != nil {
				if err := p.hermes.Subscribe(hermes.SubjectRefreshRequested, p.proc.HandleRefreshRequested); err != nil {
					return fmt.Errorf("subscribe to refresh requests: %w", err)
				}
			}

			var history api.RunHistory
			if p.db != nil {
				history = p.db
			}

			port := c.Int("port")
			srv := api.NewServer(port, cfg.APIToken, p.proc, history, p.metrics.Handler())
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			if p.hermes != nil {
				if err := p.hermes.Publish("docket.agent.registered", map[string]any{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
					"port":      port,
					"courts":    len(p.proc.Courts()),
				}); err != nil {
					slog.Warn("failed to publish registration", "error", err)
				}
			}

			slog.Info("docket ready", "port", port, "courts", len(p.proc.Courts()))

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("http shutdown", "error", err)
			}
			slog.Info("docket stopped")
			return nil
		},
	}
}
