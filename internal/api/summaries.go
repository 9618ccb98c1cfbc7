package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/docket/internal/export"
	"github.com/MikeSquared-Agency/docket/internal/hearing"
	"github.com/MikeSquared-Agency/docket/internal/processor"
	"github.com/MikeSquared-Agency/docket/internal/summary"
)

// BoardResponse is the status-board view of a run.
type BoardResponse struct {
	Date        string                   `json:"date"`
	Board       []summary.BoardRow       `json:"board"`
	TotalCourts int                      `json:"total_courts"`
	PMFollowUp  []hearing.AggregatedRow  `json:"pm_follow_up"`
	Failures    []processor.CourtFailure `json:"failures"`
	NoData      bool                     `json:"no_data"`
}

// summary handles GET /api/v1/summaries/{date}
func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// board handles GET /api/v1/summaries/{date}/board
func (s *Server) board(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForRequest(w, r)
	if !ok {
		return
	}
	board := summary.Board(res.Courts, res.AM, res.PM)
	followUp := summary.PMFollowUp(res.AM, res.PM)
	if followUp == nil {
		followUp = []hearing.AggregatedRow{}
	}
	writeJSON(w, http.StatusOK, BoardResponse{
		Date:        res.Date,
		Board:       board,
		TotalCourts: len(summary.ActiveRows(board)),
		PMFollowUp:  followUp,
		Failures:    res.Failures,
		NoData:      res.NoData,
	})
}

// exportCSV handles GET /api/v1/summaries/{date}/export.csv
func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForRequest(w, r)
	if !ok {
		return
	}
	rows := append(append([]hearing.AggregatedRow(nil), res.AM...), res.PM...)

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="Court_Session_Notes_%s.csv"`, res.Date))
	w.Write(buf.Bytes())
}

// exportXLSX handles GET /api/v1/summaries/{date}/export.xlsx
func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runForRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := export.WriteWorkbook(&buf, export.Workbook{
		Board:    summary.Board(res.Courts, res.AM, res.PM),
		FollowUp: summary.PMFollowUp(res.AM, res.PM),
		AM:       res.AM,
		PM:       res.PM,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="Court_Session_Notes_%s.xlsx"`, res.Date))
	w.Write(buf.Bytes())
}

func (s *Server) runForRequest(w http.ResponseWriter, r *http.Request) (*processor.Result, bool) {
	raw := chi.URLParam(r, "date")
	date, err := time.Parse(processor.DateLayout, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid date %q, want YYYY-MM-DD", raw))
		return nil, false
	}

	res, err := s.runner.Run(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("run failed: %v", err))
		return nil, false
	}
	return res, true
}
