// Package provider defines the boundary to the generative-AI text services.
// Adapters translate SDK failures into *Error so the rest of the service
// never has to look at provider error messages.
package provider

import (
	"context"
	"fmt"
)

// Provider generates text for a single prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Factory builds a Provider for the given credential. It is called once per
// request so a caller-supplied key can replace the configured one.
type Factory func(ctx context.Context, apiKey string) (Provider, error)

// Request carries the prompt and sampling settings for one call.
type Request struct {
	Prompt          string
	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Names accepted by NewFactory.
const (
	NameGemini = "gemini"
	NameOpenAI = "openai"
	NameFake   = "fake"
)

// Options selects and configures an adapter.
type Options struct {
	Provider    string
	GeminiModel string
	OpenAIModel string
}

// NewFactory returns the Factory for the configured provider.
func NewFactory(opts Options) (Factory, error) {
	switch opts.Provider {
	case "", NameGemini:
		model := opts.GeminiModel
		return func(ctx context.Context, apiKey string) (Provider, error) {
			return NewGemini(ctx, apiKey, model)
		}, nil
	case NameOpenAI:
		model := opts.OpenAIModel
		return func(_ context.Context, apiKey string) (Provider, error) {
			return NewOpenAI(apiKey, model), nil
		}, nil
	case NameFake:
		return func(context.Context, string) (Provider, error) {
			return NewFake(""), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", opts.Provider)
	}
}
