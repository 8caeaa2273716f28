package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini is a thin wrapper around the official genai client.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini builds a client for the Gemini API backend. The key is passed
// explicitly so a per-request key never leaks into the process environment.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	return newGeminiWithConfig(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiWithConfig(ctx context.Context, cc *genai.ClientConfig, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Name() string { return "Gemini:" + g.model }

// Generate sends the prompt as a single user turn and returns the text of the
// first candidate.
func (g *Gemini) Generate(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: req.MaxOutputTokens}
	if req.Temperature > 0 {
		cfg.Temperature = ptr(req.Temperature)
	}
	if req.TopP > 0 {
		cfg.TopP = ptr(req.TopP)
	}
	if req.TopK > 0 {
		cfg.TopK = ptr(req.TopK)
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", NewError(apiErr.Code, err)
		}
		return "", Classify(err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", Classify(ErrEmptyResponse)
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", Classify(ErrEmptyResponse)
	}
	return b.String(), nil
}

func ptr[T any](v T) *T { return &v }
