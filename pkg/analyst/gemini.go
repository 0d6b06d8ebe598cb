package analyst

import (
	"context"
	"strings"

	"github.com/m-mizutani/prospector/pkg/adapter"
	"google.golang.org/genai"
)

type Gemini struct {
	client adapter.Gemini
}

func NewGemini(client adapter.Gemini) *Gemini {
	return &Gemini{client: client}
}

func (g *Gemini) Name() string { return ProviderGemini }

func (g *Gemini) Analyze(ctx context.Context, input string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		Temperature:       genai.Ptr[float32](Temperature),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(input, genai.RoleUser),
	}

	resp, err := g.client.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", upstream(g.Name(), err)
	}

	return orNoAnalysis(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		parts = append(parts, part.Text)
	}
	return strings.Join(parts, "")
}
