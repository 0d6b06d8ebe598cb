package mcp_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/prospector/pkg/analyst"
	"github.com/m-mizutani/prospector/pkg/model"
	"github.com/m-mizutani/prospector/pkg/repository"
	"github.com/m-mizutani/prospector/pkg/service/mcp"
	"github.com/m-mizutani/prospector/pkg/usecase/history"
	"github.com/m-mizutani/prospector/pkg/usecase/intel"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

type mockAnalyzer struct {
	result string
	err    error
}

func (m *mockAnalyzer) Name() string { return "mock" }

func (m *mockAnalyzer) Analyze(ctx context.Context, input string) (string, error) {
	return m.result, m.err
}

const sampleAnalysis = "🎯 PROSPECT IDENTIFIED\n---\nCompany: Laredo Petroleum\nTarget Score: HOT 🔥\n• Call the drilling manager"

func connect(t *testing.T, a analyst.Analyzer) (*mcpsdk.ClientSession, *history.Store) {
	ctx := context.Background()
	store := history.New(repository.NewMemory())
	uc := intel.New(a, store)

	server := mcp.NewServer(uc, "test")
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ss, err := server.Connect(ctx, serverTransport, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { cs.Close() })

	return cs, store
}

func callText(t *testing.T, cs *mcpsdk.ClientSession, name string, args map[string]any) (string, bool) {
	result, err := cs.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	gt.NoError(t, err)
	gt.V(t, result).NotNil()
	gt.A(t, result.Content).Length(1)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	gt.True(t, ok)
	return text.Text, result.IsError
}

func TestListTools(t *testing.T) {
	cs, _ := connect(t, &mockAnalyzer{})

	res, err := cs.ListTools(context.Background(), nil)
	gt.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	gt.True(t, names["analyze_intelligence"])
	gt.True(t, names["list_history"])
	gt.True(t, names["get_report"])
}

func TestAnalyzeTool(t *testing.T) {
	cs, store := connect(t, &mockAnalyzer{result: sampleAnalysis})

	text, isErr := callText(t, cs, "analyze_intelligence", map[string]any{"text": "Laredo filed 4 permits"})
	gt.False(t, isErr)
	gt.S(t, text).Contains("Entry ID: ")
	gt.S(t, text).Contains("Company: Laredo Petroleum")

	entries := store.Entries()
	gt.A(t, entries).Length(1)
	gt.Equal(t, entries[0].RawInput, "Laredo filed 4 permits")
}

func TestAnalyzeToolErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		cs, store := connect(t, &mockAnalyzer{result: "unused"})
		text, isErr := callText(t, cs, "analyze_intelligence", map[string]any{"text": "   "})
		gt.True(t, isErr)
		gt.Equal(t, text, "text is required")
		gt.A(t, store.Entries()).Length(0)
	})

	t.Run("upstream failure", func(t *testing.T) {
		cs, store := connect(t, &mockAnalyzer{
			err: &analyst.UpstreamError{Provider: "mock", Err: errors.New("model overloaded")},
		})
		text, isErr := callText(t, cs, "analyze_intelligence", map[string]any{"text": "input"})
		gt.True(t, isErr)
		gt.Equal(t, text, "model overloaded")
		gt.A(t, store.Entries()).Length(0)
	})
}

func TestListHistoryTool(t *testing.T) {
	cs, store := connect(t, &mockAnalyzer{})

	text, isErr := callText(t, cs, "list_history", map[string]any{})
	gt.False(t, isErr)
	gt.Equal(t, text, "No analysis history.")

	ctx := context.Background()
	for i, input := range []string{"oldest input", "middle input", "newest input"} {
		ts := time.Date(2025, 1, 1, 10, i, 0, 0, time.UTC)
		_, err := store.Append(ctx, model.NewAnalysisEntry(input, "analysis", ts))
		gt.NoError(t, err)
	}

	text, _ = callText(t, cs, "list_history", map[string]any{})
	lines := strings.Split(strings.TrimSpace(text), "\n")
	gt.A(t, lines).Length(3)
	gt.S(t, lines[0]).Contains("newest input...")
	gt.S(t, lines[2]).Contains("oldest input...")

	text, _ = callText(t, cs, "list_history", map[string]any{"limit": 1})
	lines = strings.Split(strings.TrimSpace(text), "\n")
	gt.A(t, lines).Length(1)
	gt.S(t, lines[0]).Contains("newest input")
}

func TestGetReportTool(t *testing.T) {
	cs, store := connect(t, &mockAnalyzer{})
	entry := model.NewAnalysisEntry("input", sampleAnalysis, time.Now())
	_, err := store.Append(context.Background(), entry)
	gt.NoError(t, err)

	raw, isErr := callText(t, cs, "get_report", map[string]any{"id": entry.ID.String(), "format": "raw"})
	gt.False(t, isErr)
	gt.Equal(t, raw, sampleAnalysis)

	text, isErr := callText(t, cs, "get_report", map[string]any{"id": entry.ID.String()[:8]})
	gt.False(t, isErr)
	gt.S(t, text).Contains("PROSPECT IDENTIFIED")
	gt.S(t, text).Contains("COMPANY:")
	gt.S(t, text).Contains("Call the drilling manager")

	text, isErr = callText(t, cs, "get_report", map[string]any{"id": "does-not-exist"})
	gt.True(t, isErr)
	gt.S(t, text).Contains("entry not found")
}
