package analyst

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/prospector/pkg/adapter"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderOllama = "ollama"
)

// Providers lists the accepted provider names, default first.
var Providers = []string{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderOllama}

// Config selects and configures a provider. Model may be empty to use the
// provider default.
type Config struct {
	Provider string
	Model    string

	GeminiAPIKey    string
	GeminiProjectID string
	GeminiLocation  string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaServerURL string
}

// New builds the configured Analyzer. A missing credential is reported
// before any request is made.
func New(ctx context.Context, cfg Config) (Analyzer, error) {
	switch cfg.Provider {
	case "", ProviderGemini:
		var (
			client *adapter.GeminiClient
			err    error
		)
		switch {
		case cfg.GeminiAPIKey != "":
			client, err = adapter.NewGeminiWithAPIKey(ctx, cfg.GeminiAPIKey, adapter.WithGenerativeModel(cfg.Model))
		case cfg.GeminiProjectID != "":
			location := cfg.GeminiLocation
			if location == "" {
				location = "us-central1"
			}
			client, err = adapter.NewGemini(ctx, cfg.GeminiProjectID, location, adapter.WithGenerativeModel(cfg.Model))
		default:
			return nil, &CredentialError{
				Provider: ProviderGemini,
				Env:      "GEMINI_API_KEY",
				Message:  "API Key is missing. Please set GEMINI_API_KEY (or GEMINI_PROJECT_ID for Vertex AI) in environment.",
			}
		}
		if err != nil {
			return nil, err
		}
		return NewGemini(client), nil

	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, &CredentialError{
				Provider: ProviderOpenAI,
				Env:      "OPENAI_API_KEY",
				Message:  "OpenAI API Key is missing. Please set OPENAI_API_KEY in environment.",
			}
		}
		llm, err := adapter.NewOpenAI(cfg.OpenAIAPIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return NewLangChain(ProviderOpenAI, llm), nil

	case ProviderClaude:
		if cfg.AnthropicAPIKey == "" {
			return nil, &CredentialError{
				Provider: ProviderClaude,
				Env:      "ANTHROPIC_API_KEY",
				Message:  "Anthropic API Key is missing. Please set ANTHROPIC_API_KEY in environment.",
			}
		}
		return NewClaude(adapter.NewClaude(cfg.AnthropicAPIKey), cfg.Model), nil

	case ProviderOllama:
		llm, err := adapter.NewOllama(cfg.OllamaServerURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return NewLangChain(ProviderOllama, llm), nil

	default:
		return nil, goerr.New("unknown provider",
			goerr.V("provider", cfg.Provider),
			goerr.V("available", Providers))
	}
}

type unavailable struct {
	name string
	err  error
}

// Unavailable returns an Analyzer that fails every request with err. Long
// running shells use it to report a configuration error per request instead
// of refusing to start.
func Unavailable(name string, err error) Analyzer {
	return &unavailable{name: name, err: err}
}

func (u *unavailable) Name() string { return u.name }

func (u *unavailable) Analyze(ctx context.Context, input string) (string, error) {
	return "", u.err
}
