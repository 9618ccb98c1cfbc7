package judiciary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWindow(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	start, end := Window(date)

	if got := start.Format(windowLayout); got != "2024-02-29T16:00:00.000Z" {
		t.Errorf("unexpected start %s", got)
	}
	if got := end.Format(windowLayout); got != "2024-03-01T15:59:00.000Z" {
		t.Errorf("unexpected end %s", got)
	}
	if d := end.Sub(start); d != 23*time.Hour+59*time.Minute {
		t.Errorf("expected 23h59m window, got %s", d)
	}
}

func TestWindow_IgnoresTimeOfDayAndZone(t *testing.T) {
	sgt := time.FixedZone("SGT", 8*3600)
	start, _ := Window(time.Date(2024, 3, 1, 23, 45, 0, 0, sgt))
	if got := start.Format(windowLayout); got != "2024-02-29T16:00:00.000Z" {
		t.Errorf("unexpected start %s", got)
	}
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json; charset=utf-8" {
			t.Errorf("unexpected Content-Type %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			t.Errorf("unexpected X-Requested-With %q", r.Header.Get("X-Requested-With"))
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.SearchKeywords != "4A" {
			t.Errorf("expected court 4A, got %q", req.SearchKeywords)
		}
		if req.SelectedStartDate != "2024-02-29T16:00:00.000Z" || req.SelectedEndDate != "2024-03-01T15:59:00.000Z" {
			t.Errorf("unexpected window %s - %s", req.SelectedStartDate, req.SelectedEndDate)
		}
		if req.SelectedPageSize != "100" || req.SelectedSortBy != "0" {
			t.Errorf("unexpected paging %q/%q", req.SelectedPageSize, req.SelectedSortBy)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"listPartialView":"<div class=\"hearing-type\">Mention</div>"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	start, end := Window(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	payload, err := c.Fetch(context.Background(), "4A", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected payload")
	}
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			kind: ErrNetwork,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"missing"}`))
			},
			kind: ErrNetwork,
		},
		{
			name: "html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html><body>maintenance</body></html>`))
			},
			kind: ErrDecode,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.Write([]byte(`{}`))
			},
			kind: ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, 50*time.Millisecond)
			_, err := c.Fetch(context.Background(), "4B", time.Now(), time.Now())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("expected kind %v, got %v", tt.kind, err)
			}
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %T", err)
			}
			if fe.Court != "4B" {
				t.Errorf("expected court 4B, got %q", fe.Court)
			}
		})
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, time.Second)
	_, err := c.Fetch(context.Background(), "7A", time.Now(), time.Now())
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	if c.url != DefaultURL {
		t.Errorf("expected default url, got %q", c.url)
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %s", c.client.Timeout)
	}
}
