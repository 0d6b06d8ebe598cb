package policy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/prospector/pkg/policy"
	"github.com/m-mizutani/prospector/pkg/report"
)

const leadingPolicy = `package report

default header := false

header if {
	some m in input.markers
	startswith(input.first_line, m)
}
`

func TestHeaderPolicy(t *testing.T) {
	ctx := context.Background()
	h, err := policy.NewHeader(ctx, "leading.rego", leadingPolicy)
	gt.NoError(t, err)

	ok, err := h.Eval(ctx, "🎯 PROSPECT IDENTIFIED")
	gt.NoError(t, err)
	gt.True(t, ok)

	ok, err = h.Eval(ctx, "Company: Acme\nNote: reply via 📧")
	gt.NoError(t, err)
	gt.False(t, ok)
}

func TestHeaderPolicyWithSegmenter(t *testing.T) {
	ctx := context.Background()
	h, err := policy.NewHeader(ctx, "leading.rego", leadingPolicy)
	gt.NoError(t, err)

	segs := report.NewSegmenter(report.WithHeaderFunc(h.IsHeader)).
		Segment("🎯 PROSPECT\n---\nCompany: Acme\nNote: reply via 📧 only")
	gt.A(t, segs).Length(2)
	gt.Equal(t, segs[0].Kind, report.SegmentHeader)
	gt.Equal(t, segs[1].Kind, report.SegmentContent)
}

func TestHeaderPolicyUndefined(t *testing.T) {
	ctx := context.Background()
	h, err := policy.NewHeader(ctx, "partial.rego", `package report

header if {
	input.first_line == "HEADER"
}
`)
	gt.NoError(t, err)

	ok, err := h.Eval(ctx, "body")
	gt.NoError(t, err)
	gt.False(t, ok)

	ok, err = h.Eval(ctx, "HEADER\nrest")
	gt.NoError(t, err)
	gt.True(t, ok)
}

func TestHeaderPolicyNonBoolean(t *testing.T) {
	ctx := context.Background()
	h, err := policy.NewHeader(ctx, "string.rego", `package report

header := "yes"
`)
	gt.NoError(t, err)

	_, err = h.Eval(ctx, "anything")
	gt.Error(t, err)

	// falls back to marker containment
	gt.True(t, h.IsHeader("text with 🛒"))
	gt.False(t, h.IsHeader("plain text"))
}

func TestHeaderPolicyInvalid(t *testing.T) {
	_, err := policy.NewHeader(context.Background(), "broken.rego", "package report\n\nheader if {")
	gt.Error(t, err)
}

func TestLoadHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "header.rego")
	gt.NoError(t, os.WriteFile(path, []byte(leadingPolicy), 0644))

	h, err := policy.LoadHeader(context.Background(), path)
	gt.NoError(t, err)
	gt.True(t, h.IsHeader("📊 QUALIFICATION"))

	_, err = policy.LoadHeader(context.Background(), filepath.Join(dir, "missing.rego"))
	gt.Error(t, err)
}

func TestHeaderPolicyCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h, err := policy.NewHeader(ctx, "leading.rego", leadingPolicy)
	gt.NoError(t, err)

	// marker in the body: the policy says no, marker containment says yes
	segment := "Company: Acme\nNote: reply via 📧"
	gt.False(t, h.IsHeader(segment))

	cancel()
	gt.True(t, h.IsHeader(segment))
	gt.False(t, h.IsHeader("plain text"))
}
