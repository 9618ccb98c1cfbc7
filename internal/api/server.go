package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/docket/internal/processor"
	"github.com/MikeSquared-Agency/docket/internal/store"
)

// Runner produces the summaries for a listing date.
type Runner interface {
	Run(ctx context.Context, date time.Time) (*processor.Result, error)
	Courts() []string
}

// RunHistory lists past pipeline runs.
type RunHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]store.RunRow, error)
}

type Server struct {
	router  *chi.Mux
	runner  Runner
	history RunHistory
	srv     *http.Server
}

// NewServer wires the HTTP routes. history and metrics may be nil.
func NewServer(port int, apiToken string, runner Runner, history RunHistory, metrics http.Handler) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		runner:  runner,
		history: history,
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Get("/health", s.health)
	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/docket/status", s.status)
		r.Group(func(r chi.Router) {
			r.Use(BearerAuthMiddleware(apiToken))
			r.Get("/courts", s.courts)
			r.Get("/runs", s.runs)
			r.Route("/summaries/{date}", func(r chi.Router) {
				r.Get("/", s.summary)
				r.Get("/board", s.board)
				r.Get("/export.csv", s.exportCSV)
				r.Get("/export.xlsx", s.exportXLSX)
			})
		})
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP. It returns nil once Shutdown has been called,
// including when Shutdown ran first.
func (s *Server) Start() error {
	slog.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"agent":  "docket",
		"status": "ready",
	})
}

func (s *Server) courts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"courts": s.runner.Courts()})
}

func (s *Server) runs(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotImplemented, "run history requires DATABASE_URL")
		return
	}
	runs, err := s.history.RecentRuns(r.Context(), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("list runs: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
