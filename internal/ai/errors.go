package ai

import (
	"context"
	"errors"
	"net/http"

	"webgen_ai_server/internal/ai/provider"
	"webgen_ai_server/internal/resilience"
	"webgen_ai_server/internal/types"
)

func validationError(message, details string, err error) *types.GenerationError {
	return &types.GenerationError{
		Kind:    types.ErrValidation,
		Status:  http.StatusBadRequest,
		Message: message,
		Details: details,
		Err:     err,
	}
}

func configurationError(message, details string, err error) *types.GenerationError {
	return &types.GenerationError{
		Kind:    types.ErrConfiguration,
		Status:  http.StatusInternalServerError,
		Message: message,
		Details: details,
		Err:     err,
	}
}

// classify maps any error from the generation path onto the public taxonomy.
func classify(err error) *types.GenerationError {
	if err == nil {
		return nil
	}
	var ge *types.GenerationError
	if errors.As(err, &ge) {
		return ge
	}

	details := err.Error()

	var te *resilience.TimeoutError
	if errors.As(err, &te) {
		return &types.GenerationError{
			Kind:    types.ErrTimeout,
			Status:  http.StatusBadGateway,
			Message: "Request timeout",
			Details: details,
			Err:     err,
		}
	}

	var pe *provider.Error
	if errors.As(err, &pe) {
		return fromProviderError(pe, details, err)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &types.GenerationError{Kind: types.ErrTimeout, Status: http.StatusBadGateway, Message: "Request timeout", Details: details, Err: err}
	case errors.Is(err, context.Canceled):
		return &types.GenerationError{Kind: types.ErrUnknown, Status: http.StatusInternalServerError, Message: "Request cancelled", Details: details, Err: err}
	}

	return &types.GenerationError{
		Kind:    types.ErrUnknown,
		Status:  http.StatusInternalServerError,
		Message: "Failed to generate website",
		Details: details,
		Err:     err,
	}
}

func fromProviderError(pe *provider.Error, details string, err error) *types.GenerationError {
	ge := &types.GenerationError{Details: details, Err: err}
	switch pe.Kind {
	case provider.KindTimeout:
		ge.Kind, ge.Status, ge.Message = types.ErrTimeout, http.StatusBadGateway, "Request timeout"
	case provider.KindRateLimit:
		ge.Kind, ge.Status, ge.Message = types.ErrRateLimit, http.StatusTooManyRequests, "Rate limit exceeded"
	case provider.KindNetwork:
		ge.Kind, ge.Status, ge.Message = types.ErrNetwork, http.StatusBadGateway, "Network error while contacting the AI service"
	case provider.KindUnavailable:
		ge.Kind, ge.Status, ge.Message = types.ErrProvider, http.StatusBadGateway, "AI service unavailable"
	default:
		ge.Kind, ge.Status, ge.Message = types.ErrProvider, http.StatusInternalServerError, "AI generation failed"
	}
	return ge
}

// retryable lets the controller absorb deadline misses and transient
// provider failures. Rate limits and everything else end the request.
func retryable(err error) bool {
	var te *resilience.TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return provider.IsRetryable(err)
}
