package types

import "net/http"

// Stage names one step of the generation pipeline.
type Stage string

const (
	StageWebsite       Stage = "website"
	StageHTML          Stage = "html"
	StageStyles        Stage = "styles"
	StageScripts       Stage = "scripts"
	StageFunctionality Stage = "functionality"
)

// GenerationRequest is the inbound payload. Fields past Prompt feed the later
// stages of the multi-step pipeline.
type GenerationRequest struct {
	Prompt      string `json:"prompt"`
	HTML        string `json:"html,omitempty"`
	CSS         string `json:"css,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	UserAPIKey  string `json:"userApiKey,omitempty"`
}

// GenerationData is the payload of a successful result.
type GenerationData struct {
	HTML        string `json:"html"`
	HTMLOnly    string `json:"htmlOnly,omitempty"`
	CSSOnly     string `json:"cssOnly,omitempty"`
	JSOnly      string `json:"jsOnly,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	Stage       Stage  `json:"stage"`
	GeneratedAt string `json:"generatedAt"`
	IsComplete  bool   `json:"isComplete"`
}

// GenerationResult is the JSON envelope returned for every generation request.
type GenerationResult struct {
	Success   bool            `json:"success"`
	Data      *GenerationData `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Details   string          `json:"details,omitempty"`
	ErrorType ErrorKind       `json:"errorType,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// ErrorKind is the externally visible failure class.
type ErrorKind string

const (
	ErrValidation    ErrorKind = "ValidationError"
	ErrConfiguration ErrorKind = "ConfigurationError"
	ErrTimeout       ErrorKind = "TimeoutError"
	ErrRateLimit     ErrorKind = "RateLimitError"
	ErrNetwork       ErrorKind = "NetworkError"
	ErrProvider      ErrorKind = "ProviderError"
	ErrUnknown       ErrorKind = "UnknownError"
)

// GenerationError is a classified failure ready to be serialized.
type GenerationError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Details string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StatusFor returns the default HTTP status of a kind. ProviderError depends
// on whether the failure looked transient, so callers set Status explicitly.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrRateLimit:
		return http.StatusTooManyRequests
	case ErrTimeout, ErrNetwork, ErrProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
