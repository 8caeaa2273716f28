package ai

import (
	"context"
	"strings"
	"time"

	"webgen_ai_server/internal/ai/provider"
	"webgen_ai_server/internal/logger"
	"webgen_ai_server/internal/metrics"
	"webgen_ai_server/internal/types"
)

// Generator turns generation requests into pages. It holds no per-request
// state and is safe for concurrent use.
type Generator struct {
	providers provider.Factory
	apiKey    string
	stages    map[types.Stage]StageConfig

	log     logger.Logger
	metrics *metrics.Metrics
	wait    func(ctx context.Context, d time.Duration) error
	now     func() time.Time
}

// Option customizes a Generator.
type Option func(*Generator)

// WithStage replaces the configuration of one stage.
func WithStage(cfg StageConfig) Option {
	return func(g *Generator) { g.stages[cfg.Stage] = cfg }
}

func WithLogger(l logger.Logger) Option {
	return func(g *Generator) { g.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithWait replaces the sleep between retries.
func WithWait(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Generator) { g.wait = fn }
}

// WithClock sets the source of generatedAt and error timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator wires a provider factory and the server-side credential.
// apiKey may be empty when every caller sends its own key.
func NewGenerator(providers provider.Factory, apiKey string, opts ...Option) *Generator {
	g := &Generator{
		providers: providers,
		apiKey:    strings.TrimSpace(apiKey),
		stages:    DefaultStages(),
		log:       logger.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CredentialConfigured reports whether a server-side API key is set.
func (g *Generator) CredentialConfigured() bool {
	return g.apiKey != ""
}

// Stage returns the configuration of a stage.
func (g *Generator) Stage(stage types.Stage) (StageConfig, bool) {
	cfg, ok := g.stages[stage]
	return cfg, ok
}
