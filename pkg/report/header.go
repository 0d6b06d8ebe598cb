package report

import "strings"

// HeaderFunc decides whether a trimmed segment is a section header.
type HeaderFunc func(segment string) bool

// HeaderMarkers open the five report sections: prospect, qualification,
// product needs, outreach draft and next steps.
var HeaderMarkers = []string{"🎯", "📊", "🛒", "📧", "🔍"}

// ContainsMarker reports whether any marker occurs anywhere in the segment.
// A content segment that mentions a marker in its body is treated as a header.
func ContainsMarker(segment string) bool {
	for _, m := range HeaderMarkers {
		if strings.Contains(segment, m) {
			return true
		}
	}
	return false
}

// LeadingMarker reports whether the first line of the segment starts with a
// marker.
func LeadingMarker(segment string) bool {
	first, _, _ := strings.Cut(trim(segment), "\n")
	first = trim(first)
	for _, m := range HeaderMarkers {
		if strings.HasPrefix(first, m) {
			return true
		}
	}
	return false
}

// HeaderFuncByName resolves a built-in predicate name ("contains" or
// "leading"). ok is false for unknown names.
func HeaderFuncByName(name string) (fn HeaderFunc, ok bool) {
	switch strings.ToLower(name) {
	case "", "contains":
		return ContainsMarker, true
	case "leading":
		return LeadingMarker, true
	default:
		return nil, false
	}
}
