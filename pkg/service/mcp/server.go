// Package mcp exposes the analysis workflow as tools of a Model Context
// Protocol server.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/report/term"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/m-mizutani/prospector/pkg/usecase/intel"
	"github.com/m-mizutani/prospector/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName = "prospector"

	defaultListLimit = 20

	FormatText = "text"
	FormatRaw  = "raw"
)

type analyzeParams struct {
	Text string `json:"text"`
}

type listHistoryParams struct {
	Limit int `json:"limit,omitempty"`
}

type getReportParams struct {
	ID     string `json:"id"`
	Format string `json:"format,omitempty"`
}

var (
	analyzeSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"text": {
				Type:        "string",
				Description: "Raw intelligence: a news item, LinkedIn post, permit list, earnings excerpt or job post",
			},
		},
		Required: []string{"text"},
	}

	listHistorySchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"limit": {
				Type:        "integer",
				Description: fmt.Sprintf("Maximum number of entries to return, newest first (default %d)", defaultListLimit),
			},
		},
	}

	getReportSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {
				Type:        "string",
				Description: "Entry ID or a unique prefix of it",
			},
			"format": {
				Type:        "string",
				Description: "text renders the structured report, raw returns the analysis as generated",
				Enum:        []any{FormatText, FormatRaw},
			},
		},
		Required: []string{"id"},
	}
)

type handler struct {
	uc *intel.UseCase
}

// NewServer builds an MCP server with the analysis tools registered.
func NewServer(uc *intel.UseCase, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)

	h := &handler{uc: uc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_intelligence",
		Description: "Analyze raw sales intelligence and produce a prospecting report. The result is saved to the history.",
		InputSchema: analyzeSchema,
	}, h.analyze)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_history",
		Description: "List past analyses, newest first",
		InputSchema: listHistorySchema,
	}, h.listHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_report",
		Description: "Get the report of a past analysis",
		InputSchema: getReportSchema,
	}, h.getReport)

	return server
}

// Serve runs the server over stdin/stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, uc *intel.UseCase, version string) error {
	logging.From(ctx).Info("starting MCP server", "name", ServerName, "provider", uc.Provider())
	if err := NewServer(uc, version).Run(ctx, &mcp.StdioTransport{}); err != nil {
		return goerr.Wrap(err, "MCP server stopped")
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	r := textResult(text)
	r.IsError = true
	return r
}

func (h *handler) analyze(ctx context.Context, req *mcp.CallToolRequest, params *analyzeParams) (*mcp.CallToolResult, any, error) {
	entry, err := h.uc.Analyze(ctx, params.Text)
	switch {
	case err == nil:
	case errors.Is(err, intel.ErrEmptyInput):
		return errorResult("text is required"), nil, nil
	case errors.Is(err, intel.ErrBusy):
		return errorResult("another analysis is in progress, try again later"), nil, nil
	default:
		logging.From(ctx).Error("analysis failed", "error", err)
		return errorResult(analyst.UserMessage(err)), nil, nil
	}

	text := fmt.Sprintf("Entry ID: %s\n\n%s", entry.ID, entry.Analysis)
	return textResult(text), nil, nil
}

func (h *handler) listHistory(ctx context.Context, req *mcp.CallToolRequest, params *listHistoryParams) (*mcp.CallToolResult, any, error) {
	limit := defaultListLimit
	if params != nil && params.Limit > 0 {
		limit = params.Limit
	}

	entries := h.uc.History().Entries()
	if len(entries) == 0 {
		return textResult("No analysis history."), nil, nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	var sb strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s  %s  %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04"), e.Summary(60))
	}
	return textResult(sb.String()), nil, nil
}

func (h *handler) getReport(ctx context.Context, req *mcp.CallToolRequest, params *getReportParams) (*mcp.CallToolResult, any, error) {
	entry, err := h.uc.History().Get(params.ID)
	if err != nil {
		switch {
		case errors.Is(err, history.ErrAmbiguousID):
			return errorResult("id matches more than one entry: " + params.ID), nil, nil
		default:
			return errorResult("entry not found: " + params.ID), nil, nil
		}
	}

	switch params.Format {
	case "", FormatText:
		return textResult(term.Render(h.uc.Report(entry))), nil, nil
	case FormatRaw:
		return textResult(entry.Analysis), nil, nil
	default:
		return errorResult("unsupported format: " + params.Format), nil, nil
	}
}
