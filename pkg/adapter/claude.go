package adapter

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/goerr/v2"
)

const DefaultClaudeModel = "claude-sonnet-4-20250514"

// Claude is the interface for Claude API client
type Claude interface {
	// NewMessage sends one request to the Messages API
	NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// claudeClient implements Claude interface
type claudeClient struct {
	client *anthropic.Client
}

// NewClaude creates a new Claude API client
func NewClaude(apiKey string) Claude {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &claudeClient{
		client: &client,
	}
}

func (c *claudeClient) NewMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create claude message", goerr.V("model", params.Model))
	}
	return msg, nil
}
