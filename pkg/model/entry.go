package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrEmptyEntryID = goerr.New("entry id is empty")
)

type EntryID string

// NewEntryID generates a new unique EntryID
func NewEntryID() EntryID {
	return EntryID(uuid.New().String())
}

func (x EntryID) String() string { return string(x) }

// AnalysisEntry is one analysis request and its raw result. Entries are never
// modified after creation.
type AnalysisEntry struct {
	ID        EntryID   `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RawInput  string    `json:"rawInput"`
	Analysis  string    `json:"analysis"`
}

// NewAnalysisEntry creates an entry with a fresh ID.
func NewAnalysisEntry(rawInput, analysis string, now time.Time) *AnalysisEntry {
	return &AnalysisEntry{
		ID:        NewEntryID(),
		Timestamp: now,
		RawInput:  rawInput,
		Analysis:  analysis,
	}
}

// Validate checks if the entry can be persisted
func (e *AnalysisEntry) Validate() error {
	if e.ID == "" {
		return ErrEmptyEntryID
	}
	if e.Timestamp.IsZero() {
		return goerr.New("entry timestamp is zero", goerr.V("id", e.ID))
	}
	return nil
}

// Summary returns the first n characters of the raw input followed by "...",
// as shown in history listings.
func (e *AnalysisEntry) Summary(n int) string {
	runes := []rune(e.RawInput)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.ReplaceAll(string(runes), "\n", " ") + "..."
}
