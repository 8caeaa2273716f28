package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"webgen_ai_server/internal/ai"
	"webgen_ai_server/internal/types"
)

const (
	serviceName    = "webgen-ai-server"
	serviceVersion = "2.0.0"

	userAPIKeyHeader = "X-User-API-Key"

	// DefaultMaxBodyBytes matches the 10mb JSON limit of the Express server.
	DefaultMaxBodyBytes int64 = 10 << 20

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// HandlerConfig carries the settings the handlers need besides the generator.
type HandlerConfig struct {
	ProviderName string
	MaxBodyBytes int64
	// GeminiKeyConfigured is what /health reports as geminiApiKey.
	GeminiKeyConfigured bool
	// Metrics may be nil, in which case /metrics is not registered.
	Metrics http.Handler
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	aiGenerator *ai.Generator
	cfg         HandlerConfig
	metrics     http.Handler
	now         func() time.Time
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(aiGen *ai.Generator, cfg HandlerConfig) *APIHandler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &APIHandler{
		aiGenerator: aiGen,
		cfg:         cfg,
		metrics:     cfg.Metrics,
		now:         time.Now,
	}
}

// Generate returns the handler of one generation stage. Validation, provider
// calls and error mapping all happen in the generator; this only moves bytes.
func (h *APIHandler) Generate(stage types.Stage) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxBodyBytes)
		body, err := c.GetRawData()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusBadRequest, h.failure("Request body too large", err.Error(), types.ErrValidation))
				return
			}
			c.JSON(http.StatusBadRequest, h.failure("Invalid request body", err.Error(), types.ErrValidation))
			return
		}

		resp := h.aiGenerator.Handle(c.Request.Context(), stage, ai.Input{
			Body:      body,
			APIKey:    c.GetHeader(userAPIKeyHeader),
			RequestID: c.GetString(requestIDKey),
		})
		c.JSON(resp.Status, resp.Result)
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Provider  string            `json:"provider"`
	APIStatus map[string]string `json:"apiStatus"`
}

// Health reports liveness, the GEMINI_API_KEY state and whether the active
// provider has a server-side credential. It never calls the provider.
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC().Format(timestampLayout),
		Service:   serviceName,
		Version:   serviceVersion,
		Provider:  h.cfg.ProviderName,
		APIStatus: map[string]string{
			"geminiApiKey":     keyStatus(h.cfg.GeminiKeyConfigured),
			"serverCredential": keyStatus(h.aiGenerator.CredentialConfigured()),
		},
	})
}

func keyStatus(configured bool) string {
	if configured {
		return "configured"
	}
	return "missing"
}

func methodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, types.GenerationResult{Success: false, Error: "Method not allowed"})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, types.GenerationResult{Success: false, Error: "Not found"})
}

func (h *APIHandler) failure(message, details string, kind types.ErrorKind) types.GenerationResult {
	return failureAt(h.now(), message, details, kind)
}

func failure(message, details string, kind types.ErrorKind) types.GenerationResult {
	return failureAt(time.Now(), message, details, kind)
}

func failureAt(now time.Time, message, details string, kind types.ErrorKind) types.GenerationResult {
	return types.GenerationResult{
		Success:   false,
		Error:     message,
		Details:   details,
		ErrorType: kind,
		Timestamp: now.UTC().Format(timestampLayout),
	}
}
