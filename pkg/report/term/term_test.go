package term_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/prospector/pkg/report"
	"github.com/m-mizutani/prospector/pkg/report/term"
)

func TestRender(t *testing.T) {
	out := term.Render(report.Build("🎯 PROSPECT IDENTIFIED\n---\nCompany: Acme Corp\nTarget Score: HOT 🔥\n\n• Drill 3 new wells\nSubject: New completions in Midland\nClosing sentence without separators"))

	gt.S(t, out).Contains("🎯 PROSPECT IDENTIFIED")
	gt.S(t, out).Contains("COMPANY:")
	gt.S(t, out).Contains("Acme Corp")
	gt.S(t, out).Contains("HOT 🔥")
	gt.S(t, out).Contains("•")
	gt.S(t, out).Contains("Drill 3 new wells")
	gt.S(t, out).Contains("SUBJ:")
	gt.S(t, out).Contains("New completions in Midland")
	gt.S(t, out).Contains("Closing sentence without separators")
}

func TestRenderKeepsSpacers(t *testing.T) {
	out := term.Render(report.Build("first line of text\n\nsecond line of text"))
	gt.S(t, out).Contains("first line of text\n\nsecond line of text\n")
}

func TestRenderEmpty(t *testing.T) {
	gt.Equal(t, term.Render(nil), "")
	gt.Equal(t, term.Render(report.Build("")), "")
}

func TestBanner(t *testing.T) {
	out := term.Banner("INTELLIGENCE REPORT", "Texas American Trade Inc.")
	gt.Equal(t, strings.Count(out, "\n"), 2)
	gt.S(t, out).Contains("INTELLIGENCE REPORT")
}
