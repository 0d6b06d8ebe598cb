// Package intel runs one analysis at a time and records successful results in
// the history.
package intel

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/model"
	"github.com/m-mizutani/prospector/pkg/report"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
)

var (
	ErrEmptyInput = goerr.New("input is empty")
	ErrBusy       = goerr.New("another analysis is in progress")
)

// UseCase provides analysis operations
type UseCase struct {
	analyzer  analyst.Analyzer
	store     *history.Store
	segmenter *report.Segmenter
	running   atomic.Bool
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithSegmenter sets how reports are split for display
func WithSegmenter(s *report.Segmenter) Option {
	return func(uc *UseCase) {
		uc.segmenter = s
	}
}

// New creates a new intel UseCase instance
func New(analyzer analyst.Analyzer, store *history.Store, opts ...Option) *UseCase {
	uc := &UseCase{
		analyzer:  analyzer,
		store:     store,
		segmenter: report.NewSegmenter(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *UseCase) History() *history.Store {
	return uc.store
}

func (uc *UseCase) Provider() string {
	return uc.analyzer.Name()
}

// Analyze sends input to the analyzer and appends the result to the history.
// The input is stored exactly as given. On failure no entry is created.
func (uc *UseCase) Analyze(ctx context.Context, input string) (*model.AnalysisEntry, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	if !uc.running.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer uc.running.Store(false)

	logger := logging.From(ctx).With("provider", uc.analyzer.Name())
	logger.Info("analyzing intelligence", "input_length", len(input))

	started := time.Now()
	result, err := uc.analyzer.Analyze(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "analysis failed", goerr.V("provider", uc.analyzer.Name()))
	}

	entry := model.NewAnalysisEntry(input, result, uc.store.Now())
	if _, err := uc.store.Append(ctx, entry); err != nil {
		return nil, err
	}

	logger.Info("analysis completed",
		"id", entry.ID,
		"duration", time.Since(started),
		"result_length", len(result))
	return entry, nil
}

// Report builds the display tree for an entry.
func (uc *UseCase) Report(entry *model.AnalysisEntry) *report.Node {
	return report.Render(uc.segmenter.Segment(entry.Analysis))
}

// Busy reports whether an analysis is in flight.
func (uc *UseCase) Busy() bool {
	return uc.running.Load()
}
