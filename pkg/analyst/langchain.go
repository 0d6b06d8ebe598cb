package analyst

import (
	"context"

	"github.com/tmc/langchaingo/llms"
)

// LangChain drives any langchaingo chat model. It serves the openai and
// ollama providers.
type LangChain struct {
	name string
	llm  llms.Model
}

func NewLangChain(name string, llm llms.Model) *LangChain {
	return &LangChain{name: name, llm: llm}
}

func (l *LangChain) Name() string { return l.name }

func (l *LangChain) Analyze(ctx context.Context, input string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	resp, err := l.llm.GenerateContent(ctx, messages, llms.WithTemperature(Temperature))
	if err != nil {
		return "", upstream(l.name, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return NoAnalysis, nil
	}

	return orNoAnalysis(resp.Choices[0].Content), nil
}
