package report

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

type LineKind int

const (
	LineSpacer LineKind = iota
	LineBullet
	LineSubject
	LineKeyValue
	LineText
)

func (k LineKind) String() string {
	switch k {
	case LineSpacer:
		return "spacer"
	case LineBullet:
		return "bullet"
	case LineSubject:
		return "subject"
	case LineKeyValue:
		return "key_value"
	default:
		return "text"
	}
}

const (
	subjectPrefix = "Subject:"

	// key-value lines must be shorter than this many UTF-16 code units, the
	// length unit of the browser tool the reports were designed for
	maxKeyValueLength = 100
)

var (
	bulletGlyphs    = []string{"•", "-", "*"}
	priorityMarkers = []string{"🔥", "HOT"}
)

// Line is one classified line of a content segment.
type Line struct {
	Kind LineKind
	// Text is the display text for spacer, bullet, subject and text lines
	Text string

	Label        string
	Value        string
	HighPriority bool
}

// ClassifyLines classifies every line of a content segment, blank lines included.
func ClassifyLines(segment string) []Line {
	raw := strings.Split(segment, "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, ClassifyLine(l))
	}
	return lines
}

// ClassifyLine applies, in order: blank, bullet, subject, key-value, text.
func ClassifyLine(line string) Line {
	trimmed := trim(line)

	if trimmed == "" {
		return Line{Kind: LineSpacer}
	}

	for _, g := range bulletGlyphs {
		if strings.HasPrefix(trimmed, g) {
			rest := strings.TrimLeftFunc(strings.TrimPrefix(trimmed, g), isTrimmed)
			return Line{Kind: LineBullet, Text: rest}
		}
	}

	if strings.HasPrefix(trimmed, subjectPrefix) {
		return Line{
			Kind: LineSubject,
			Text: trim(strings.TrimPrefix(trimmed, subjectPrefix)),
		}
	}

	if strings.Contains(trimmed, ":") && textLength(trimmed) < maxKeyValueLength {
		label, value, _ := strings.Cut(trimmed, ":")
		value = trim(value)
		return Line{
			Kind:         LineKeyValue,
			Label:        trim(label),
			Value:        value,
			HighPriority: isHighPriority(value),
		}
	}

	return Line{Kind: LineText, Text: trimmed}
}

func isHighPriority(value string) bool {
	for _, m := range priorityMarkers {
		if strings.Contains(value, m) {
			return true
		}
	}
	return false
}

// textLength counts UTF-16 code units, so characters outside the BMP such as
// most emoji count twice.
func textLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// isTrimmed matches white space and the byte order mark.
func isTrimmed(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

func trim(s string) string {
	return strings.TrimFunc(s, isTrimmed)
}
