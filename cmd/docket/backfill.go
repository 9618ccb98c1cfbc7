package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/docket/internal/backfill"
	"github.com/MikeSquared-Agency/docket/internal/config"
)

func cmdBackfill(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "Run the pipeline for every date in a range, resumably",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "since",
				Usage:    "first listing date (YYYY-MM-DD)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "until",
				Usage:    "last listing date (YYYY-MM-DD), inclusive",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "resume state file",
				Value: cfg.StatePath,
			},
			&cli.DurationFlag{
				Name:  "pause",
				Usage: "pause between dates",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			since, err := parseDate(c.String("since"))
			if err != nil {
				return err
			}
			until, err := parseDate(c.String("until"))
			if err != nil {
				return err
			}

			p, err := openPipeline(ctx, cfg, c)
			if err != nil {
				return err
			}
			defer p.Close()

			var poster backfill.SummaryPoster
			if p.slack != nil {
				poster = p.slack
			}

			runner := backfill.NewRunner(backfill.Config{
				Since:     since,
				Until:     until,
				StatePath: c.String("state"),
				Pause:     c.Duration("pause"),
			}, p.proc, poster, slog.Default())

			err = runner.Run(ctx)
			if errors.Is(err, context.Canceled) {
				slog.Info("backfill stopped, rerun to resume")
				return nil
			}
			return err
		},
	}
}
