package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgen_ai_server/internal/ai"
	"webgen_ai_server/internal/ai/provider"
	"webgen_ai_server/internal/api"
	"webgen_ai_server/internal/logger"
	"webgen_ai_server/internal/metrics"
	"webgen_ai_server/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeFactory(_ context.Context, _ string) (provider.Provider, error) {
	return provider.NewFake(""), nil
}

type routerOpts struct {
	apiKey    string
	geminiKey bool
	maxBody   int64
	cors      api.CORSConfig
	factory   provider.Factory
	metrics   *metrics.Metrics
	noMetric  bool
}

func newTestRouter(t *testing.T, o routerOpts) *gin.Engine {
	t.Helper()
	if o.factory == nil {
		o.factory = fakeFactory
	}
	m := o.metrics
	if m == nil {
		m = metrics.New()
	}
	gen := ai.NewGenerator(o.factory, o.apiKey, ai.WithMetrics(m))

	var mh http.Handler
	if !o.noMetric {
		mh = m.Handler()
	}
	h := api.NewAPIHandler(gen, api.HandlerConfig{
		ProviderName:        provider.NameFake,
		MaxBodyBytes:        o.maxBody,
		GeminiKeyConfigured: o.geminiKey,
		Metrics:             mh,
	})
	return api.NewRouter(h, o.cors, logger.NewNop())
}

func do(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) types.GenerationResult {
	t.Helper()
	var res types.GenerationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func TestGenerateWebsite_Success(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "server-key"})

	for _, path := range []string{"/generate-website", "/api/generate-website"} {
		t.Run(path, func(t *testing.T) {
			w := do(router, http.MethodPost, path, `{"prompt":"a coffee shop"}`, nil)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			res := decodeResult(t, w)
			assert.True(t, res.Success)
			require.NotNil(t, res.Data)
			assert.Contains(t, res.Data.HTML, "<h1>Sample Site</h1>")
			assert.Equal(t, types.StageWebsite, res.Data.Stage)
			assert.True(t, res.Data.IsComplete)
		})
	}
}

func TestGenerate_MissingPrompt(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k"})

	w := do(router, http.MethodPost, "/generate-html", "", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	res := decodeResult(t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "Prompt is required", res.Error)
	assert.Equal(t, types.ErrValidation, res.ErrorType)
	assert.NotEmpty(t, res.Timestamp)
}

func TestGenerate_MissingCredential(t *testing.T) {
	calls := 0
	factory := func(context.Context, string) (provider.Provider, error) {
		calls++
		return provider.NewFake(""), nil
	}
	router := newTestRouter(t, routerOpts{factory: factory})

	w := do(router, http.MethodPost, "/api/generate-website", `{"prompt":`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, types.ErrConfiguration, decodeResult(t, w).ErrorType)
	assert.Zero(t, calls)
}

func TestGenerate_UserAPIKeyHeader(t *testing.T) {
	var gotKey string
	factory := func(_ context.Context, key string) (provider.Provider, error) {
		gotKey = key
		return provider.NewFake(""), nil
	}
	router := newTestRouter(t, routerOpts{factory: factory})

	w := do(router, http.MethodPost, "/generate-website", `{"prompt":"shop"}`, map[string]string{"X-User-API-Key": "user-key"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-key", gotKey)
}

func TestGenerate_BodyTooLarge(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k", maxBody: 16})

	w := do(router, http.MethodPost, "/generate-website", `{"prompt":"`+strings.Repeat("a", 64)+`"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	res := decodeResult(t, w)
	assert.Equal(t, types.ErrValidation, res.ErrorType)
	assert.Equal(t, "Request body too large", res.Error)
}

func TestGenerateStyles_RequiresHTML(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k"})

	w := do(router, http.MethodPost, "/generate-styles", `{"prompt":"blog"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Both prompt and HTML content are required", decodeResult(t, w).Error)
}

func TestPreflight(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k"})

	for _, path := range []string{"/generate-website", "/api/health", "/anything/else"} {
		w := do(router, http.MethodOptions, path, "", nil)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"), path)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-User-API-Key", path)
	}
}

func TestWrongMethod(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k"})

	w := do(router, http.MethodGet, "/generate-website", "", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	res := decodeResult(t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "Method not allowed", res.Error)
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k"})

	w := do(router, http.MethodPost, "/generate-everything", `{"prompt":"x"}`, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, decodeResult(t, w).Success)
}

func TestCORS_AllowedOrigins(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k", cors: api.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}})

	w := do(router, http.MethodGet, "/health", "", map[string]string{"Origin": "https://app.example.com"})
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(router, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example.com"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		geminiKey      bool
		wantGemini     string
		wantCredential string
	}{
		{name: "gemini key configured", apiKey: "k", geminiKey: true, wantGemini: "configured", wantCredential: "configured"},
		{name: "nothing configured", apiKey: "", wantGemini: "missing", wantCredential: "missing"},
		{name: "offline provider without gemini key", apiKey: "offline", wantGemini: "missing", wantCredential: "configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, routerOpts{apiKey: tt.apiKey, geminiKey: tt.geminiKey})

			w := do(router, http.MethodGet, "/api/health", "", nil)

			require.Equal(t, http.StatusOK, w.Code)
			var health api.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
			assert.Equal(t, "healthy", health.Status)
			assert.Equal(t, "2.0.0", health.Version)
			assert.Equal(t, provider.NameFake, health.Provider)
			assert.Equal(t, tt.wantGemini, health.APIStatus["geminiApiKey"])
			assert.Equal(t, tt.wantCredential, health.APIStatus["serverCredential"])
			assert.NotEmpty(t, health.Timestamp)
		})
	}
}

func TestRequestID_PreservesInbound(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k"})

	w := do(router, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "trace-abc123"})

	assert.Equal(t, "trace-abc123", w.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	router := newTestRouter(t, routerOpts{apiKey: "k", metrics: m})

	do(router, http.MethodPost, "/generate-website", `{"prompt":"shop"}`, nil)
	do(router, http.MethodPost, "/generate-website", `{}`, nil)
	w := do(router, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `webgen_generation_requests_total{outcome="success",stage="website"} 1`)
	assert.Contains(t, body, `webgen_generation_requests_total{outcome="ValidationError",stage="website"} 1`)
	assert.Contains(t, body, `webgen_provider_attempts_total{phase="primary",result="success",stage="website"} 1`)
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	router := newTestRouter(t, routerOpts{apiKey: "k", noMetric: true})

	w := do(router, http.MethodGet, "/metrics", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(api.RecoveryMiddleware(logger.NewNop()))
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(router, http.MethodGet, "/boom", "", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decodeResult(t, w)
	assert.False(t, res.Success)
	assert.Equal(t, types.ErrUnknown, res.ErrorType)
}
