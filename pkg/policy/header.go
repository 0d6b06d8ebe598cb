// Package policy evaluates user supplied Rego policies that customise how
// reports are segmented.
package policy

import (
	"context"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/report"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
	"github.com/open-policy-agent/opa/v1/rego"
)

// HeaderQuery is the rule a header policy must define. It is evaluated once
// per segment and must produce a boolean.
const HeaderQuery = "data.report.header"

// Header decides header segments with a Rego policy. The policy input is
//
//	{"text": <segment>, "first_line": <first line>, "markers": [<marker glyphs>]}
//
// IsHeader evaluates with the context given to NewHeader, so that context must
// outlive every segmenter using the Header. Once it is cancelled, IsHeader
// falls back to report.ContainsMarker.
type Header struct {
	ctx      context.Context
	query    *rego.PreparedEvalQuery
	fallback report.HeaderFunc
}

// LoadHeader reads a policy file and prepares the header query.
func LoadHeader(ctx context.Context, path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read header policy", goerr.V("path", path))
	}
	return NewHeader(ctx, path, string(data))
}

// NewHeader prepares the header query from policy source. name identifies
// the module in error messages.
func NewHeader(ctx context.Context, name, source string) (*Header, error) {
	r := rego.New(
		rego.Query(HeaderQuery),
		rego.Module(name, source),
	)

	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare header policy", goerr.V("name", name))
	}

	return &Header{
		ctx:      ctx,
		query:    &prepared,
		fallback: report.ContainsMarker,
	}, nil
}

// Eval evaluates the policy for one segment.
func (h *Header) Eval(ctx context.Context, segment string) (bool, error) {
	first, _, _ := strings.Cut(segment, "\n")
	markers := make([]any, len(report.HeaderMarkers))
	for i, m := range report.HeaderMarkers {
		markers[i] = m
	}

	input := map[string]any{
		"text":       segment,
		"first_line": strings.TrimSpace(first),
		"markers":    markers,
	}

	rs, err := h.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, goerr.Wrap(err, "failed to evaluate header policy")
	}

	// undefined rule means "not a header"
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, nil
	}

	v, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, goerr.New("header policy must return boolean",
			goerr.V("value", rs[0].Expressions[0].Value))
	}
	return v, nil
}

// IsHeader satisfies report.HeaderFunc. Evaluation errors are logged and the
// default marker check is used instead.
func (h *Header) IsHeader(segment string) bool {
	if err := h.ctx.Err(); err != nil {
		logging.From(h.ctx).Warn("header policy context is done, using default", "error", err)
		return h.fallback(segment)
	}

	v, err := h.Eval(h.ctx, segment)
	if err != nil {
		logging.From(h.ctx).Warn("header policy failed, using default", "error", err)
		return h.fallback(segment)
	}
	return v
}
