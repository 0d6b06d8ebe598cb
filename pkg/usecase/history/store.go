// Package history owns the list of past analyses and keeps it persisted as a
// single document in a repository.
package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/model"
	"github.com/m-mizutani/prospector/pkg/repository"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
)

// DefaultKey is the record name the history document is stored under.
const DefaultKey = "tati_intel_history"

// ClearPrompt is the question asked before the history is cleared.
const ClearPrompt = "Are you sure you want to clear your analysis history?"

var (
	ErrEntryNotFound = goerr.New("entry not found")
	ErrAmbiguousID   = goerr.New("entry id prefix matches more than one entry")
)

// Store holds the analysis history, newest first.
type Store struct {
	repo  repository.Repository
	key   string
	clock func() time.Time

	mu      sync.RWMutex
	entries []*model.AnalysisEntry
}

// Option is a functional option for Store
type Option func(*Store)

// WithKey changes the record name of the history document
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithClock replaces the time source used for new entries
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// New creates an empty Store. Call Load to restore persisted entries.
func New(repo repository.Repository, opts ...Option) *Store {
	s := &Store{
		repo:  repo,
		key:   DefaultKey,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time from the store clock.
func (s *Store) Now() time.Time {
	return s.clock()
}

// Load replaces the in-memory history with the persisted document. Any
// failure to read or decode it is logged and results in an empty history.
func (s *Store) Load(ctx context.Context) []*model.AnalysisEntry {
	entries := s.read(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
	return cloneEntries(s.entries)
}

func (s *Store) read(ctx context.Context) []*model.AnalysisEntry {
	logger := logging.From(ctx)

	data, err := s.repo.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("failed to read history, starting empty", "key", s.key, "error", err)
		}
		return nil
	}

	entries, err := model.DecodeHistory(data)
	if err != nil {
		logger.Warn("failed to decode history, starting empty", "key", s.key, "error", err)
		return nil
	}

	logger.Debug("history loaded", "key", s.key, "count", len(entries))
	return entries
}

// Entries returns a snapshot of the history, newest first.
func (s *Store) Entries() []*model.AnalysisEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneEntries(s.entries)
}

// Get finds an entry by its full ID or by a prefix matching exactly one entry.
func (s *Store) Get(idPrefix string) (*model.AnalysisEntry, error) {
	if idPrefix == "" {
		return nil, goerr.Wrap(ErrEntryNotFound, "empty entry id")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *model.AnalysisEntry
	for _, e := range s.entries {
		if e.ID.String() == idPrefix {
			return e, nil
		}
		if strings.HasPrefix(e.ID.String(), idPrefix) {
			if found != nil {
				return nil, goerr.Wrap(ErrAmbiguousID, "ambiguous entry id", goerr.V("prefix", idPrefix))
			}
			found = e
		}
	}

	if found == nil {
		return nil, goerr.Wrap(ErrEntryNotFound, "no entry with the id", goerr.V("id", idPrefix))
	}
	return found, nil
}

// Append puts entry in front of the history and persists the whole document.
// If persisting fails the history is left as it was.
func (s *Store) Append(ctx context.Context, entry *model.AnalysisEntry) ([]*model.AnalysisEntry, error) {
	if entry == nil {
		return nil, goerr.New("entry is nil")
	}
	if err := entry.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid entry")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*model.AnalysisEntry, 0, len(s.entries)+1)
	next = append(next, entry)
	next = append(next, s.entries...)

	if err := s.persist(ctx, next); err != nil {
		return nil, goerr.Wrap(err, "failed to save history", goerr.V("id", entry.ID))
	}
	s.entries = next

	logging.From(ctx).Debug("history entry appended", "id", entry.ID, "count", len(next))
	return cloneEntries(s.entries), nil
}

// Clear asks confirm with ClearPrompt and, if accepted, persists an empty
// history. It reports whether the history was cleared.
func (s *Store) Clear(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm == nil {
		return false, goerr.New("confirmer is required to clear history")
	}

	ok, err := confirm.Confirm(ctx, ClearPrompt)
	if err != nil {
		return false, goerr.Wrap(err, "failed to confirm clearing history")
	}
	if !ok {
		logging.From(ctx).Info("clearing history declined")
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, nil); err != nil {
		return false, goerr.Wrap(err, "failed to clear history")
	}
	removed := len(s.entries)
	s.entries = nil

	logging.From(ctx).Info("history cleared", "removed", removed)
	return true, nil
}

func (s *Store) persist(ctx context.Context, entries []*model.AnalysisEntry) error {
	data, err := model.EncodeHistory(entries)
	if err != nil {
		return err
	}
	if err := s.repo.Put(ctx, s.key, data); err != nil {
		return goerr.Wrap(err, "failed to put history document", goerr.V("key", s.key))
	}
	return nil
}

func cloneEntries(entries []*model.AnalysisEntry) []*model.AnalysisEntry {
	out := make([]*model.AnalysisEntry, len(entries))
	copy(out, entries)
	return out
}
