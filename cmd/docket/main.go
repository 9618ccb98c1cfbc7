package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/docket/internal/config"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "docket",
		Usage: "Court hearing list ingestion and session summaries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "courts",
				Usage: "comma-separated court codes to poll",
			},
			&cli.StringFlag{
				Name:  "cutoff",
				Usage: "AM/PM session boundary, e.g. \"12:30 PM\"",
				Value: cfg.Cutoff,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "courts fetched in parallel",
				Value: cfg.FetchConcurrency,
			},
		},
		Commands: []*cli.Command{
			cmdServe(cfg),
			cmdRun(cfg),
			cmdBackfill(cfg),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("docket failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
