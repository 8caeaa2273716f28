package ai

import (
	"time"

	"webgen_ai_server/internal/ai/prompts"
	"webgen_ai_server/internal/ai/provider"
	"webgen_ai_server/internal/resilience"
	"webgen_ai_server/internal/types"
)

// ParseMode selects how a provider response is turned into a page.
type ParseMode string

const (
	// ParseSingleBlob strips markdown fences and uses the text as the page.
	ParseSingleBlob ParseMode = "single-blob"
	// ParseThreeBlock extracts html/css/javascript blocks and assembles them.
	ParseThreeBlock ParseMode = "three-block"
)

// RetryPolicy mirrors resilience.Policy without the callbacks.
type RetryPolicy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration
}

// PromptBuilder renders the instruction text for a request.
type PromptBuilder func(req types.GenerationRequest) string

// StageConfig is everything that differs between the generation endpoints.
type StageConfig struct {
	Stage types.Stage

	Prompt   PromptBuilder
	Timeout  time.Duration
	Sampling provider.Request

	// A nil FallbackPrompt disables the fallback attempt.
	FallbackPrompt   PromptBuilder
	FallbackTimeout  time.Duration
	FallbackSampling provider.Request

	Retry RetryPolicy
	Parse ParseMode

	// RequiresHTML rejects requests without upstream html.
	RequiresHTML bool
	// InheritUpstream fills blocks the provider left out from the request's
	// html and css fields.
	InheritUpstream bool
	// Complete marks the last stage of the multi-step pipeline.
	Complete bool
}

// DefaultStages returns the built-in configuration of every stage.
func DefaultStages() map[types.Stage]StageConfig {
	return map[types.Stage]StageConfig{
		types.StageWebsite: {
			Stage:            types.StageWebsite,
			Prompt:           func(r types.GenerationRequest) string { return prompts.Website(r.Prompt) },
			Timeout:          30 * time.Second,
			Sampling:         provider.Request{Temperature: 0.7, TopP: 0.8, TopK: 40, MaxOutputTokens: 4096},
			FallbackPrompt:   func(r types.GenerationRequest) string { return prompts.WebsiteFallback(r.Prompt) },
			FallbackTimeout:  15 * time.Second,
			FallbackSampling: provider.Request{Temperature: 0.5, TopP: 0.8, TopK: 40, MaxOutputTokens: 2048},
			Retry:            RetryPolicy{MaxRetries: 2, InitialDelay: time.Second, BackoffMultiplier: 2, MaxDelay: 5 * time.Second},
			Parse:            ParseThreeBlock,
			Complete:         true,
		},
		types.StageHTML: {
			Stage:            types.StageHTML,
			Prompt:           func(r types.GenerationRequest) string { return prompts.HTMLOnly(r.Prompt) },
			Timeout:          15 * time.Second,
			Sampling:         provider.Request{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 1024},
			FallbackPrompt:   func(r types.GenerationRequest) string { return prompts.HTMLOnlyFallback(r.Prompt) },
			FallbackTimeout:  8 * time.Second,
			FallbackSampling: provider.Request{Temperature: 0.5, MaxOutputTokens: 768},
			Retry:            RetryPolicy{MaxRetries: 2, InitialDelay: time.Second, BackoffMultiplier: 1, MaxDelay: 5 * time.Second},
			Parse:            ParseSingleBlob,
		},
		types.StageStyles: {
			Stage:            types.StageStyles,
			Prompt:           func(r types.GenerationRequest) string { return prompts.Styles(r.Prompt, r.HTML) },
			Timeout:          20 * time.Second,
			Sampling:         provider.Request{Temperature: 0.8, TopP: 0.95, TopK: 40, MaxOutputTokens: 3072},
			FallbackPrompt:   func(r types.GenerationRequest) string { return prompts.StylesFallback(r.Prompt, r.HTML) },
			FallbackTimeout:  10 * time.Second,
			FallbackSampling: provider.Request{Temperature: 0.5, MaxOutputTokens: 1536},
			Retry:            RetryPolicy{MaxRetries: 2, InitialDelay: time.Second, BackoffMultiplier: 2, MaxDelay: 5 * time.Second},
			Parse:            ParseThreeBlock,
			RequiresHTML:     true,
			InheritUpstream:  true,
		},
		types.StageScripts: {
			Stage:            types.StageScripts,
			Prompt:           func(r types.GenerationRequest) string { return prompts.Scripts(r.Prompt, r.HTML, r.CSS) },
			Timeout:          20 * time.Second,
			Sampling:         provider.Request{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 3072},
			FallbackPrompt:   func(r types.GenerationRequest) string { return prompts.ScriptsFallback(r.Prompt, r.HTML, r.CSS) },
			FallbackTimeout:  10 * time.Second,
			FallbackSampling: provider.Request{Temperature: 0.5, MaxOutputTokens: 1536},
			Retry:            RetryPolicy{MaxRetries: 2, InitialDelay: time.Second, BackoffMultiplier: 2, MaxDelay: 5 * time.Second},
			Parse:            ParseThreeBlock,
			RequiresHTML:     true,
			InheritUpstream:  true,
			Complete:         true,
		},
		types.StageFunctionality: {
			Stage:            types.StageFunctionality,
			Prompt:           func(r types.GenerationRequest) string { return prompts.Functionality(r.Prompt, r.HTML) },
			Timeout:          15 * time.Second,
			Sampling:         provider.Request{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 3072},
			FallbackPrompt:   func(r types.GenerationRequest) string { return prompts.FunctionalityFallback(r.Prompt, r.HTML) },
			FallbackTimeout:  8 * time.Second,
			FallbackSampling: provider.Request{Temperature: 0.5, MaxOutputTokens: 2048},
			Retry:            RetryPolicy{MaxRetries: 1, InitialDelay: time.Second, BackoffMultiplier: 1, MaxDelay: 5 * time.Second},
			Parse:            ParseSingleBlob,
			RequiresHTML:     true,
			Complete:         true,
		},
	}
}

// OverrideRetries applies global retry settings to every stage. Zero values
// leave the stage defaults untouched.
func OverrideRetries(stages map[types.Stage]StageConfig, maxRetries int, initialDelay time.Duration) {
	for name, cfg := range stages {
		if maxRetries > 0 {
			cfg.Retry.MaxRetries = maxRetries
		}
		if initialDelay > 0 {
			cfg.Retry.InitialDelay = initialDelay
		}
		stages[name] = cfg
	}
}

// Budget is the longest a request to this stage can take: every primary
// attempt running to its timeout, the backoff waits between them and the
// fallback.
func (c StageConfig) Budget() time.Duration {
	attempts := c.Retry.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	total := time.Duration(attempts) * c.Timeout
	for i := 1; i < attempts; i++ {
		total += resilience.Backoff(c.Retry.InitialDelay, c.Retry.BackoffMultiplier, i, c.Retry.MaxDelay)
	}
	if c.FallbackPrompt != nil {
		total += c.FallbackTimeout
	}
	return total
}

// MaxBudget returns the largest Budget among stages.
func MaxBudget(stages map[types.Stage]StageConfig) time.Duration {
	var longest time.Duration
	for _, cfg := range stages {
		if b := cfg.Budget(); b > longest {
			longest = b
		}
	}
	return longest
}
