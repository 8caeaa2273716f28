package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"webgen_ai_server/internal/ai/provider"
	"webgen_ai_server/internal/extract"
	"webgen_ai_server/internal/logger"
	"webgen_ai_server/internal/resilience"
	"webgen_ai_server/internal/types"
)

// Per-request states, logged as the request moves through Handle.
const (
	stateValidating      = "validating"
	stateCallingProvider = "calling_provider"
	stateRetrying        = "retrying"
	stateFallingBack     = "falling_back"
	stateParsing         = "parsing"
	stateResponding      = "responding"
)

const (
	defaultTitle = "Generated Website"
	isoMillis    = "2006-01-02T15:04:05.000Z07:00"
)

// Input is the transport-neutral request handed over by the HTTP layer.
type Input struct {
	Body []byte
	// APIKey is the caller-supplied credential, if any.
	APIKey    string
	RequestID string
}

// Response pairs the HTTP status with the JSON envelope.
type Response struct {
	Status int
	Result types.GenerationResult
}

// Handle validates the request, calls the provider under the stage's retry
// policy and shapes the result. It never returns an unclassified failure.
func (g *Generator) Handle(ctx context.Context, stage types.Stage, in Input) Response {
	start := time.Now()
	log := g.log.With(logger.String("stage", string(stage)), logger.String("request_id", in.RequestID))

	data, err := g.generate(ctx, stage, in, log)
	log.Debug("generation state", logger.String("state", stateResponding))

	if err != nil {
		ge := classify(err)
		status := ge.Status
		if status == 0 {
			status = types.StatusFor(ge.Kind)
		}
		log.Warn("generation failed",
			logger.String("state", "failed"),
			logger.String("error_type", string(ge.Kind)),
			logger.Int("status", status),
			logger.Error(err),
		)
		g.metrics.ObserveRequest(string(stage), string(ge.Kind), time.Since(start))
		return Response{
			Status: status,
			Result: types.GenerationResult{
				Success:   false,
				Error:     ge.Message,
				Details:   ge.Details,
				ErrorType: ge.Kind,
				Timestamp: g.now().UTC().Format(isoMillis),
			},
		}
	}

	log.Info("generation succeeded",
		logger.String("state", "succeeded"),
		logger.Int("html_bytes", len(data.HTML)),
		logger.Duration("elapsed", time.Since(start)),
	)
	g.metrics.ObserveRequest(string(stage), "success", time.Since(start))
	return Response{Status: http.StatusOK, Result: types.GenerationResult{Success: true, Data: data}}
}

func (g *Generator) generate(ctx context.Context, stage types.Stage, in Input, log logger.Logger) (*types.GenerationData, error) {
	log.Debug("generation state", logger.String("state", stateValidating))

	cfg, ok := g.stages[stage]
	if !ok {
		return nil, fmt.Errorf("unknown generation stage %q", stage)
	}

	apiKey := strings.TrimSpace(in.APIKey)
	if apiKey == "" {
		apiKey = g.apiKey
	}
	if apiKey == "" {
		return nil, configurationError("AI provider API key not configured",
			"Set GEMINI_API_KEY on the server or send your own key in the X-User-API-Key header", nil)
	}

	req, err := parseRequest(in.Body)
	if err != nil {
		return nil, validationError("Invalid JSON in request body", err.Error(), err)
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return nil, validationError("Prompt is required", "Prompt is required and must be a non-empty string", nil)
	}
	if cfg.RequiresHTML && strings.TrimSpace(req.HTML) == "" {
		return nil, validationError("Both prompt and HTML content are required",
			fmt.Sprintf("The %s stage needs the html produced by an earlier stage", cfg.Stage), nil)
	}
	if key := strings.TrimSpace(req.UserAPIKey); key != "" {
		apiKey = key
	}

	p, err := g.providers(ctx, apiKey)
	if err != nil {
		return nil, configurationError("Failed to initialize AI service", err.Error(), err)
	}

	log.Debug("generation state",
		logger.String("state", stateCallingProvider),
		logger.String("provider", p.Name()),
		logger.Int("prompt_length", len(req.Prompt)),
	)
	text, err := resilience.RunWithPolicy(ctx, g.primaryAttempt(cfg, p, req), g.policy(cfg, p, req, log))
	if err != nil {
		return nil, err
	}

	log.Debug("generation state", logger.String("state", stateParsing), logger.Int("response_length", len(text)))
	return g.buildData(cfg, req, text, log), nil
}

func parseRequest(body []byte) (types.GenerationRequest, error) {
	var req types.GenerationRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}
	return req, nil
}

func (g *Generator) primaryAttempt(cfg StageConfig, p provider.Provider, req types.GenerationRequest) resilience.Attempt {
	return resilience.Attempt{
		Name:    string(cfg.Stage),
		Timeout: cfg.Timeout,
		Run:     call(p, cfg.Prompt(req), cfg.Sampling),
	}
}

func (g *Generator) policy(cfg StageConfig, p provider.Provider, req types.GenerationRequest, log logger.Logger) resilience.Policy {
	pol := resilience.Policy{
		MaxRetries:        cfg.Retry.MaxRetries,
		InitialDelay:      cfg.Retry.InitialDelay,
		BackoffMultiplier: cfg.Retry.BackoffMultiplier,
		MaxDelay:          cfg.Retry.MaxDelay,
		IsRetryable:       retryable,
		Wait:              g.wait,
		OnAttempt: func(r resilience.AttemptRecord) {
			result := "success"
			if r.Err != nil {
				result = string(classify(r.Err).Kind)
				log.Warn("provider attempt failed",
					logger.String("state", stateRetrying),
					logger.Int("attempt", r.Number),
					logger.String("phase", string(r.Phase)),
					logger.Duration("timeout", r.Timeout),
					logger.Duration("elapsed", r.Elapsed),
					logger.Error(r.Err),
				)
			}
			g.metrics.ObserveAttempt(string(cfg.Stage), string(r.Phase), result)
		},
		OnFallback: func(lastErr error) {
			log.Warn("primary attempts exhausted, using simplified prompt",
				logger.String("state", stateFallingBack),
				logger.Error(lastErr),
			)
		},
	}
	if cfg.FallbackPrompt != nil {
		pol.Fallback = &resilience.Attempt{
			Name:    string(cfg.Stage) + "-fallback",
			Timeout: cfg.FallbackTimeout,
			Run:     call(p, cfg.FallbackPrompt(req), cfg.FallbackSampling),
		}
	}
	return pol
}

// call types every provider failure at the boundary, whatever the adapter returned.
func call(p provider.Provider, prompt string, sampling provider.Request) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		r := sampling
		r.Prompt = prompt
		text, err := p.Generate(ctx, r)
		if err != nil {
			return "", provider.Classify(err)
		}
		return text, nil
	}
}

func (g *Generator) buildData(cfg StageConfig, req types.GenerationRequest, text string, log logger.Logger) *types.GenerationData {
	data := &types.GenerationData{
		Prompt:     req.Prompt,
		Stage:      cfg.Stage,
		IsComplete: cfg.Complete,
	}

	var title, description string
	switch cfg.Parse {
	case ParseThreeBlock:
		site := extract.Extract(text)
		if cfg.InheritUpstream {
			if site.HTML == "" {
				site.HTML = strings.TrimSpace(req.HTML)
			}
			if site.CSS == "" {
				site.CSS = strings.TrimSpace(req.CSS)
			}
		}
		if site.Empty() {
			log.Warn("no fenced code blocks found in provider response", logger.Int("response_length", len(text)))
		}
		title, description = extract.Metadata(site.HTML)
		title = firstNonEmpty(title, req.Title, defaultTitle)
		data.HTML = extract.BuildDocument(site, title)
		data.HTMLOnly, data.CSSOnly, data.JSOnly = site.HTML, site.CSS, site.JS
	default:
		page := extract.StripFences(text)
		title, description = extract.Metadata(page)
		title = firstNonEmpty(title, req.Title, defaultTitle)
		data.HTML = page
	}

	data.Title = title
	data.Description = firstNonEmpty(description, req.Description, "AI-generated website based on: "+req.Prompt)
	// Captured here, not when the request arrived.
	data.GeneratedAt = g.now().UTC().Format(isoMillis)
	return data
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
