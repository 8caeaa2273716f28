package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Kind is the provider failure class.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindRateLimit   Kind = "rate_limit"
	KindNetwork     Kind = "network"
	KindUnavailable Kind = "unavailable"
	KindOther       Kind = "other"
)

// Error is a classified provider failure.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could plausibly succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTimeout, KindNetwork, KindUnavailable:
		return true
	default:
		return false
	}
}

// ErrEmptyResponse is wrapped when a provider answers without any text.
var ErrEmptyResponse = errors.New("provider returned empty response")

// NewError classifies err using an HTTP status code reported by an SDK.
// A zero status falls through to Classify.
func NewError(status int, err error) *Error {
	if kind, ok := kindFromStatus(status); ok {
		return &Error{Kind: kind, Message: messageOf(err), StatusCode: status, Err: err}
	}
	e := Classify(err)
	e.StatusCode = status
	return e
}

func kindFromStatus(status int) (Kind, bool) {
	switch {
	case status == http.StatusTooManyRequests:
		return KindRateLimit, true
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout, true
	case status == http.StatusInternalServerError,
		status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable:
		return KindUnavailable, true
	case status >= 400:
		return KindOther, true
	default:
		return "", false
	}
}

// Substring heuristics, consulted only when the SDK gave nothing typed.
// Provider message changes can silently misclassify.
var (
	rateLimitPatterns   = []string{"rate limit", "ratelimit", "quota", "resource_exhausted", "too many requests"}
	timeoutPatterns     = []string{"timed out", "timeout", "deadline exceeded"}
	networkPatterns     = []string{"network", "enotfound", "econnrefused", "connection refused", "connection reset", "no such host", "broken pipe", "unexpected eof"}
	unavailablePatterns = []string{"overloaded", "unavailable", "internal error", "bad gateway", "try again later"}
)

// Classify turns any error into a *Error.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	msg := messageOf(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Message: msg, Err: err}
	case errors.Is(err, ErrEmptyResponse):
		return &Error{Kind: KindOther, Message: msg, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Message: msg, Err: err}
		}
		return &Error{Kind: KindNetwork, Message: msg, Err: err}
	}

	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, rateLimitPatterns):
		return &Error{Kind: KindRateLimit, Message: msg, Err: err}
	case containsAny(lower, timeoutPatterns):
		return &Error{Kind: KindTimeout, Message: msg, Err: err}
	case containsAny(lower, networkPatterns):
		return &Error{Kind: KindNetwork, Message: msg, Err: err}
	case containsAny(lower, unavailablePatterns):
		return &Error{Kind: KindUnavailable, Message: msg, Err: err}
	}
	return &Error{Kind: KindOther, Message: msg, Err: err}
}

// IsRetryable reports whether err is a retryable provider failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).Retryable()
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func messageOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
