package judiciary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultURL     = "https://www.judiciary.gov.sg/hearing-list/GetFilteredList/"
	DefaultTimeout = 10 * time.Second

	windowLayout = "2006-01-02T15:04:05.000Z"
	pageSize     = "100"
)

var (
	ErrNetwork = errors.New("network")
	ErrDecode  = errors.New("decode")
)

// FetchError is a per-court failure. Kind is ErrNetwork or ErrDecode.
type FetchError struct {
	Court string
	Kind  error
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch court %s: %v: %v", e.Court, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Payload is the decoded JSON body of a hearing-list response.
type Payload json.RawMessage

type Client struct {
	url    string
	client *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type request struct {
	SearchKeywords    string `json:"SearchKeywords"`
	SelectedStartDate string `json:"SelectedStartDate"`
	SelectedEndDate   string `json:"SelectedEndDate"`
	SelectedPageSize  string `json:"SelectedPageSize"`
	SelectedSortBy    string `json:"SelectedSortBy"`
}

// Window returns the UTC bounds of the listing day for date: 16:00 on the
// previous day through 15:59 on the day itself.
func Window(date time.Time) (start, end time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start = day.AddDate(0, 0, -1).Add(16 * time.Hour)
	end = day.Add(15*time.Hour + 59*time.Minute)
	return start, end
}

// Fetch requests one court's hearing list for the window [start, end).
// It makes exactly one attempt.
func (c *Client) Fetch(ctx context.Context, court string, start, end time.Time) (Payload, error) {
	body, err := json.Marshal(request{
		SearchKeywords:    court,
		SelectedStartDate: start.UTC().Format(windowLayout),
		SelectedEndDate:   end.UTC().Format(windowLayout),
		SelectedPageSize:  pageSize,
		SelectedSortBy:    "0",
	})
	if err != nil {
		return nil, &FetchError{Court: court, Kind: ErrNetwork, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Court: court, Kind: ErrNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Court: court, Kind: ErrNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Court: court, Kind: ErrNetwork, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Court: court, Kind: ErrNetwork, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if !json.Valid(respBody) {
		return nil, &FetchError{Court: court, Kind: ErrDecode, Err: errors.New("response body is not valid JSON")}
	}

	return Payload(respBody), nil
}
