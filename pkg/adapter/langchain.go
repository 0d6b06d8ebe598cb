package adapter

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	DefaultOpenAIModel     = "gpt-4o"
	DefaultOllamaModel     = "llama3.2"
	DefaultOllamaServerURL = "http://localhost:11434"
)

// NewOpenAI returns a langchaingo model backed by the OpenAI chat API.
func NewOpenAI(apiKey, model string) (llms.Model, error) {
	if model == "" {
		model = DefaultOpenAIModel
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create openai client", goerr.V("model", model))
	}
	return llm, nil
}

// NewOllama returns a langchaingo model served by a local Ollama instance.
func NewOllama(serverURL, model string) (llms.Model, error) {
	if model == "" {
		model = DefaultOllamaModel
	}
	if serverURL == "" {
		serverURL = DefaultOllamaServerURL
	}

	llm, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(serverURL),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create ollama client",
			goerr.V("model", model), goerr.V("server_url", serverURL))
	}
	return llm, nil
}
