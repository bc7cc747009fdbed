package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/req2test/internal/reporting"
)

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLatest returns the newest JSON report
func (s *Server) handleLatest(w http.ResponseWriter, _ *http.Request) {
	report, err := s.store.Latest()
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleHistory returns summaries of recent runs, newest first
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := reporting.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.errorFromErr(w, &ErrInvalidParam{Param: "limit", Value: raw, Message: "must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := s.store.History(limit)
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"history": entries,
	})
}

// handleTrends returns aggregate statistics over stored runs
func (s *Server) handleTrends(w http.ResponseWriter, _ *http.Request) {
	trends, err := s.store.Trends()
	if err != nil {
		s.errorFromErr(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, trends)
}
