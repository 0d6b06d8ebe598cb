// Package analyst turns raw sales intelligence into a structured prospecting
// report by calling an LLM provider with a fixed system instruction.
package analyst

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

//go:embed prompt/system.md
var systemPrompt string

const (
	// NoAnalysis is returned when the provider replies with no text
	NoAnalysis = "No analysis generated."

	Temperature = 0.7

	unexpectedMessage = "An unexpected error occurred during analysis."
)

var (
	ErrMissingCredential = goerr.New("missing credential")
	ErrUpstream          = goerr.New("analysis provider failed")
)

// Analyzer sends one piece of intelligence to a provider and returns the
// report text.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, input string) (string, error)
}

// SystemPrompt returns the instruction sent with every request.
func SystemPrompt() string {
	return systemPrompt
}

// CredentialError reports a provider that cannot be built because a key or
// project is not configured. It matches ErrMissingCredential.
type CredentialError struct {
	Provider string
	Env      string
	Message  string
}

func (e *CredentialError) Error() string { return e.Message }

func (e *CredentialError) Is(target error) bool { return target == ErrMissingCredential }

// UpstreamError wraps a failure returned by a provider. It matches ErrUpstream.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

func upstream(provider string, err error) error {
	return goerr.Wrap(&UpstreamError{Provider: provider, Err: err}, "failed to analyze intelligence",
		goerr.V("provider", provider))
}

// UserMessage maps an analysis error to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ce *CredentialError
	if errors.As(err, &ce) {
		return ce.Message
	}

	var ue *UpstreamError
	if errors.As(err, &ue) {
		if msg := rootMessage(ue.Err); msg != "" {
			return msg
		}
	}

	return unexpectedMessage
}

// rootMessage returns the text of the innermost error, which is the one the
// provider SDK produced.
func rootMessage(err error) string {
	for err != nil {
		next := errors.Unwrap(err)
		if next == nil {
			return strings.TrimSpace(err.Error())
		}
		err = next
	}
	return ""
}

// orNoAnalysis substitutes only an empty reply; white space is kept as sent.
func orNoAnalysis(text string) string {
	if text == "" {
		return NoAnalysis
	}
	return text
}
