// Package report turns the raw text returned by the analyst into a display tree.
//
// The reply is expected to contain sections separated by "---" lines, each
// section opening with a marker glyph, but any text is accepted: unexpected
// shapes degrade to content blocks with best-effort line classification.
package report

import (
	"strings"
)

// Delimiter separates segments. Every occurrence splits, not only whole lines.
const Delimiter = "---"

type SegmentKind int

const (
	SegmentContent SegmentKind = iota
	SegmentHeader
)

func (k SegmentKind) String() string {
	if k == SegmentHeader {
		return "header"
	}
	return "content"
}

// Segment is a trimmed, non-empty run of text between delimiters.
type Segment struct {
	Index int
	Text  string
	Kind  SegmentKind
	// Lines is set for content segments only
	Lines []Line
}

// Split cuts text on every Delimiter, trims each piece and drops empty ones.
func Split(text string) []string {
	pieces := strings.Split(text, Delimiter)
	out := make([]string, 0, len(pieces))
	for _, p := range pieces {
		p = trim(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Join is the inverse of Split up to trimming and dropped empty pieces.
func Join(pieces []string) string {
	return strings.Join(pieces, "\n"+Delimiter+"\n")
}

// Segmenter splits and classifies analysis text.
type Segmenter struct {
	isHeader HeaderFunc
}

type Option func(*Segmenter)

// WithHeaderFunc replaces the header predicate. nil keeps the default.
func WithHeaderFunc(fn HeaderFunc) Option {
	return func(s *Segmenter) {
		if fn != nil {
			s.isHeader = fn
		}
	}
}

func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{
		isHeader: ContainsMarker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment splits text and classifies every segment. It never fails; empty
// input yields an empty slice.
func (s *Segmenter) Segment(text string) []Segment {
	pieces := Split(text)
	segments := make([]Segment, 0, len(pieces))

	for i, p := range pieces {
		seg := Segment{
			Index: i,
			Text:  p,
			Kind:  SegmentContent,
		}

		if s.isHeader(p) {
			seg.Kind = SegmentHeader
		} else {
			seg.Lines = ClassifyLines(p)
		}

		segments = append(segments, seg)
	}

	return segments
}
