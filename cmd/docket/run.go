package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/MikeSquared-Agency/docket/internal/config"
	"github.com/MikeSquared-Agency/docket/internal/export"
	"github.com/MikeSquared-Agency/docket/internal/hearing"
	"github.com/MikeSquared-Agency/docket/internal/processor"
	"github.com/MikeSquared-Agency/docket/internal/summary"
)

// listingZone is the court's local time; listing dates default to its today.
var listingZone = time.FixedZone("SGT", 8*60*60)

func cmdRun(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the pipeline once for a listing date and write the summary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "date",
				Usage: "listing date (YYYY-MM-DD), defaults to today",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format: json, csv or xlsx",
				Value: "json",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output file, defaults to stdout",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			date, err := parseDate(c.String("date"))
			if err != nil {
				return err
			}
			format := c.String("format")
			switch format {
			case "json", "csv", "xlsx":
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			p, err := openPipeline(ctx, cfg, c)
			if err != nil {
				return err
			}
			defer p.Close()

			res, err := p.proc.Run(ctx, date)
			if err != nil {
				return err
			}

			var w io.Writer = os.Stdout
			if path := c.String("out"); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}
			return writeResult(w, format, res)
		},
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().In(listingZone)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(processor.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

func writeResult(w io.Writer, format string, res *processor.Result) error {
	switch format {
	case "csv":
		rows := append(append([]hearing.AggregatedRow(nil), res.AM...), res.PM...)
		return export.WriteCSV(w, rows)
	case "xlsx":
		return export.WriteWorkbook(w, export.Workbook{
			Board:    summary.Board(res.Courts, res.AM, res.PM),
			FollowUp: summary.PMFollowUp(res.AM, res.PM),
			AM:       res.AM,
			PM:       res.PM,
		})
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}
