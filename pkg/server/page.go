package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/model"
	reporthtml "github.com/m-mizutani/prospector/pkg/report/html"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/m-mizutani/prospector/pkg/usecase/intel"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
)

const summaryLength = 60

type pageData struct {
	Provider    string
	Input       string
	Error       string
	ClearPrompt string
	Examples    []analyst.Example
	Entries     []entryView
}

type entryView struct {
	ID      string
	Date    string
	Time    string
	Summary string
	Older   bool
	Report  template.HTML
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, input, errMsg string) {
	data := pageData{
		Provider:    s.uc.Provider(),
		Input:       input,
		Error:       errMsg,
		ClearPrompt: history.ClearPrompt,
		Examples:    analyst.Examples,
	}

	for i, e := range s.uc.History().Entries() {
		view, err := s.entryView(e)
		if err != nil {
			logging.From(r.Context()).Error("failed to render report", "id", e.ID, "error", err)
			continue
		}
		view.Older = i > 0
		data.Entries = append(data.Entries, view)
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		logging.From(r.Context()).Error("failed to execute page template", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func (s *Server) entryView(e *model.AnalysisEntry) (entryView, error) {
	var buf bytes.Buffer
	if err := reporthtml.Render(&buf, s.uc.Report(e)); err != nil {
		return entryView{}, err
	}

	local := e.Timestamp.Local()
	return entryView{
		ID:      e.ID.String(),
		Date:    local.Format("1/2/2006"),
		Time:    local.Format("15:04"),
		Summary: e.Summary(summaryLength),
		// reporthtml escapes all text nodes
		Report: template.HTML(buf.String()),
	}, nil
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("example")
	if raw == "" {
		s.renderPage(w, r, http.StatusOK, "", "")
		return
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "", "Unknown example: "+raw)
		return
	}
	ex, err := analyst.ExampleAt(n)
	if err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "", "Unknown example: "+raw)
		return
	}
	s.renderPage(w, r, http.StatusOK, ex.Text, "")
}

func (s *Server) analyzeForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "", "Invalid form submission.")
		return
	}
	text := r.PostFormValue("text")

	ctx, cancel := s.analysisContext(r.Context())
	defer cancel()

	if _, err := s.uc.Analyze(ctx, text); err != nil {
		status, msg := analysisFailure(err)
		if status >= http.StatusInternalServerError {
			logging.From(ctx).Error("analysis failed", "error", err)
		}
		s.renderPage(w, r, status, text, msg)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) clearForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, r, http.StatusBadRequest, "", "Invalid form submission.")
		return
	}

	confirm := history.Never
	if r.PostFormValue("confirm") == "yes" {
		confirm = history.Always
	}

	if _, err := s.uc.History().Clear(r.Context(), confirm); err != nil {
		logging.From(r.Context()).Error("failed to clear history", "error", err)
		s.renderPage(w, r, http.StatusInternalServerError, "", "Failed to clear history.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) rawEntry(w http.ResponseWriter, r *http.Request) {
	entry, status, err := s.lookup(r)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(entry.Analysis))
}

func (s *Server) lookup(r *http.Request) (*model.AnalysisEntry, int, error) {
	entry, err := s.uc.History().Get(r.PathValue("id"))
	switch {
	case err == nil:
		return entry, http.StatusOK, nil
	case errors.Is(err, history.ErrAmbiguousID):
		return nil, http.StatusBadRequest, errors.New("entry id is ambiguous")
	default:
		return nil, http.StatusNotFound, errors.New("entry not found")
	}
}

// analysisFailure maps an analysis error to a status code and the message
// shown to the user.
func analysisFailure(err error) (int, string) {
	switch {
	case errors.Is(err, intel.ErrEmptyInput):
		return http.StatusBadRequest, "Please enter some intelligence to analyze."
	case errors.Is(err, intel.ErrBusy):
		return http.StatusConflict, "An analysis is already in progress. Please wait for it to finish."
	case errors.Is(err, analyst.ErrUpstream):
		return http.StatusBadGateway, analyst.UserMessage(err)
	default:
		return http.StatusInternalServerError, analyst.UserMessage(err)
	}
}
