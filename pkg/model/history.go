package model

import (
	"bytes"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// HistoryVersion is the current layout of the persisted history document.
//
// Version 0 is the bare JSON array written by the browser version of the tool.
// Version 1 wraps the same entries in an envelope carrying the version.
const HistoryVersion = 1

var (
	ErrUnsupportedHistoryVersion = goerr.New("unsupported history version")
)

// HistoryDocument is the persisted form of the analysis history, newest first.
type HistoryDocument struct {
	Version int              `json:"version"`
	Entries []*AnalysisEntry `json:"entries"`
}

// EncodeHistory serializes entries as a current-version document.
func EncodeHistory(entries []*AnalysisEntry) ([]byte, error) {
	if entries == nil {
		entries = []*AnalysisEntry{}
	}

	data, err := json.Marshal(&HistoryDocument{
		Version: HistoryVersion,
		Entries: entries,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal history document")
	}
	return data, nil
}

// DecodeHistory parses a persisted document of any known version and returns
// its entries migrated to the current layout.
func DecodeHistory(data []byte) ([]*AnalysisEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, goerr.New("history document is empty")
	}

	// version 0: bare array
	if trimmed[0] == '[' {
		var entries []*AnalysisEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal legacy history")
		}
		return compact(entries), nil
	}

	var doc HistoryDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal history document")
	}

	if doc.Version != HistoryVersion {
		return nil, goerr.Wrap(ErrUnsupportedHistoryVersion, "cannot decode history",
			goerr.V("version", doc.Version),
			goerr.V("supported", HistoryVersion))
	}

	return compact(doc.Entries), nil
}

func compact(entries []*AnalysisEntry) []*AnalysisEntry {
	out := make([]*AnalysisEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
