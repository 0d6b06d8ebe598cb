package analyst

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/prospector/pkg/adapter"
)

const DefaultClaudeMaxTokens = 4096

type Claude struct {
	client    adapter.Claude
	model     string
	maxTokens int64
}

func NewClaude(client adapter.Claude, model string) *Claude {
	if model == "" {
		model = adapter.DefaultClaudeModel
	}
	return &Claude{
		client:    client,
		model:     model,
		maxTokens: DefaultClaudeMaxTokens,
	}
}

func (c *Claude) Name() string { return ProviderClaude }

func (c *Claude) Analyze(ctx context.Context, input string) (string, error) {
	msg, err := c.client.NewMessage(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
		Temperature: anthropic.Float(Temperature),
	})
	if err != nil {
		return "", upstream(c.Name(), err)
	}
	if msg == nil {
		return NoAnalysis, nil
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return orNoAnalysis(b.String()), nil
}
