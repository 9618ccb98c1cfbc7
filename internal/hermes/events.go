package hermes

import (
	"context"
	"errors"
	"fmt"

	"github.com/MikeSquared-Agency/docket/internal/hearing"
	"github.com/MikeSquared-Agency/docket/internal/processor"
)

const (
	SubjectSummaryGenerated = "docket.summary.generated"
	SubjectCourtFailed      = "docket.court.failed"
	SubjectRefreshRequested = "docket.refresh.requested"
)

// SummaryEvent is published after every pipeline run.
type SummaryEvent struct {
	RunID     string                  `json:"run_id"`
	Date      string                  `json:"date"`
	AM        []hearing.AggregatedRow `json:"am"`
	PM        []hearing.AggregatedRow `json:"pm"`
	Failed    []string                `json:"failed_courts"`
	NoData    bool                    `json:"no_data"`
	FromCache bool                    `json:"from_cache"`
	Timestamp string                  `json:"timestamp"`
}

// CourtFailedEvent is published once per court whose fetch failed.
type CourtFailedEvent struct {
	RunID string `json:"run_id"`
	Date  string `json:"date"`
	Court string `json:"court"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// NewSummaryEvent builds the summary payload for a run.
func NewSummaryEvent(res *processor.Result) SummaryEvent {
	failed := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		failed = append(failed, f.Court)
	}
	return SummaryEvent{
		RunID:     res.RunID.String(),
		Date:      res.Date,
		AM:        res.AM,
		PM:        res.PM,
		Failed:    failed,
		NoData:    res.NoData,
		FromCache: res.FromCache,
		Timestamp: res.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type publisher interface {
	Publish(subject string, data any) error
}

// Notifier publishes run results to NATS.
type Notifier struct {
	pub publisher
}

func NewNotifier(c *Client) *Notifier {
	return &Notifier{pub: c}
}

// NotifyRun publishes the summary event and one failure event per failed court.
func (n *Notifier) NotifyRun(ctx context.Context, res *processor.Result) error {
	var errs []error
	if err := n.pub.Publish(SubjectSummaryGenerated, NewSummaryEvent(res)); err != nil {
		errs = append(errs, fmt.Errorf("publish summary: %w", err))
	}
	for _, f := range res.Failures {
		evt := CourtFailedEvent{
			RunID: res.RunID.String(),
			Date:  res.Date,
			Court: f.Court,
			Kind:  f.Kind,
			Error: f.Error,
		}
		if err := n.pub.Publish(SubjectCourtFailed, evt); err != nil {
			errs = append(errs, fmt.Errorf("publish court failure %s: %w", f.Court, err))
		}
	}
	return errors.Join(errs...)
}
