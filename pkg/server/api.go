package server

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/prospector/pkg/model"
	"github.com/m-mizutani/prospector/pkg/report"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
)

// AnalyzeRequest is the request body of POST /api/analyze
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse is the response of POST /api/analyze
type AnalyzeResponse struct {
	Entry  *model.AnalysisEntry `json:"entry"`
	Report *report.Node         `json:"report"`
}

// HistoryResponse is the response of GET /api/history
type HistoryResponse struct {
	Entries []*model.AnalysisEntry `json:"entries"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HistoryResponse{Entries: s.uc.History().Entries()})
}

func (s *Server) analyzeAPI(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	entry, err := s.uc.Analyze(ctx, req.Text)
	if err != nil {
		status, msg := analysisFailure(err)
		if status >= http.StatusInternalServerError {
			logging.From(ctx).Error("analysis failed", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusCreated, AnalyzeResponse{
		Entry:  entry,
		Report: s.uc.Report(entry),
	})
}

func (s *Server) clearAPI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusConflict, "confirmation required: pass confirm=true")
		return
	}

	if _, err := s.uc.History().Clear(r.Context(), history.Always); err != nil {
		logging.From(r.Context()).Error("failed to clear history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

func (s *Server) entryReport(w http.ResponseWriter, r *http.Request) {
	entry, status, err := s.lookup(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.uc.Report(entry))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
