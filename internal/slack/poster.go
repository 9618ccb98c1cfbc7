package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/docket/internal/processor"
	"github.com/MikeSquared-Agency/docket/internal/summary"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// NotifyRun posts the day's court status board. Cached re-runs are not re-posted.
func (p *Poster) NotifyRun(ctx context.Context, res *processor.Result) error {
	if res.FromCache {
		return nil
	}
	ts, err := p.post(ctx, map[string]any{
		"channel": p.channel,
		"text":    formatBoardMessage(res),
	})
	if err != nil {
		return err
	}
	p.logger.Info("posted court board to slack", "ts", ts, "date", res.Date)

	if len(res.Failures) > 0 {
		if err := p.PostThread(ctx, ts, formatFailures(res.Failures)); err != nil {
			return fmt.Errorf("post failures thread: %w", err)
		}
	}
	return nil
}

// PostThread posts a threaded reply to a message.
func (p *Poster) PostThread(ctx context.Context, threadTS, text string) error {
	_, err := p.post(ctx, map[string]any{
		"channel":   p.channel,
		"thread_ts": threadTS,
		"text":      text,
	})
	return err
}

func (p *Poster) post(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}
	return slackResp.TS, nil
}

func formatBoardMessage(res *processor.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "*Court Session Notes: %s*\n", res.Date)
	if res.NoData {
		sb.WriteString("_No data fetched for the selected date._")
		return sb.String()
	}

	active := summary.ActiveRows(summary.Board(res.Courts, res.AM, res.PM))
	fmt.Fprintf(&sb, "*Total Courts:* %d\n\n", len(active))
	sb.WriteString("```\n")
	fmt.Fprintf(&sb, "%-6s %-10s %-10s\n", "Court", "AM M/H", "PM M/H")
	for _, b := range active {
		fmt.Fprintf(&sb, "%-6s %-10s %-10s\n", b.Court, b.AMLabel, b.PMLabel)
	}
	sb.WriteString("```")

	if followUp := summary.PMFollowUp(res.AM, res.PM); len(followUp) > 0 {
		sb.WriteString("\n*PM follow-up:* ")
		courts := make([]string, len(followUp))
		for i, r := range followUp {
			courts[i] = fmt.Sprintf("%s (%s)", r.Court, r.Label)
		}
		sb.WriteString(strings.Join(courts, ", "))
	}
	return sb.String()
}

func formatFailures(failures []processor.CourtFailure) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Missing data for %d court(s):*\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(&sb, "• %s: %s\n", f.Court, f.Kind)
	}
	return sb.String()
}
