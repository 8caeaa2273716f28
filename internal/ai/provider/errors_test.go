package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError_StatusCodes(t *testing.T) {
	base := errors.New("sdk failure")
	tests := []struct {
		status int
		want   Kind
	}{
		{429, KindRateLimit},
		{408, KindTimeout},
		{504, KindTimeout},
		{500, KindUnavailable},
		{502, KindUnavailable},
		{503, KindUnavailable},
		{400, KindOther},
		{403, KindOther},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			e := NewError(tt.status, base)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, tt.status, e.StatusCode)
			assert.ErrorIs(t, e, base)
		})
	}
}

func TestNewError_ZeroStatusFallsBackToMessage(t *testing.T) {
	e := NewError(0, errors.New("You exceeded your current quota"))
	assert.Equal(t, KindRateLimit, e.Kind)
}

func TestClassify_Messages(t *testing.T) {
	tests := []struct {
		msg  string
		want Kind
	}{
		{"429 Too Many Requests: rate limit reached", KindRateLimit},
		{"RESOURCE_EXHAUSTED", KindRateLimit},
		{"request timed out", KindTimeout},
		{"getaddrinfo ENOTFOUND generativelanguage.googleapis.com", KindNetwork},
		{"read tcp: connection reset by peer", KindNetwork},
		{"The model is overloaded. Please try again later.", KindUnavailable},
		{"invalid argument: prompt blocked", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(errors.New(tt.msg)).Kind)
		})
	}
}

type fakeNetErr struct{ timeout bool }

func (e fakeNetErr) Error() string   { return "dial failed" }
func (e fakeNetErr) Timeout() bool   { return e.timeout }
func (e fakeNetErr) Temporary() bool { return false }

var _ net.Error = fakeNetErr{}

func TestClassify_TypedErrors(t *testing.T) {
	assert.Equal(t, KindTimeout, Classify(context.DeadlineExceeded).Kind)
	assert.Equal(t, KindTimeout, Classify(fmt.Errorf("call: %w", fakeNetErr{timeout: true})).Kind)
	assert.Equal(t, KindNetwork, Classify(fakeNetErr{}).Kind)
	assert.Equal(t, KindOther, Classify(ErrEmptyResponse).Kind)
}

func TestClassify_KeepsExistingError(t *testing.T) {
	orig := &Error{Kind: KindRateLimit, Message: "slow down"}
	wrapped := fmt.Errorf("attempt 1: %w", orig)
	assert.Same(t, orig, Classify(wrapped))
	assert.Nil(t, Classify(nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&Error{Kind: KindTimeout}))
	assert.True(t, IsRetryable(&Error{Kind: KindNetwork}))
	assert.True(t, IsRetryable(&Error{Kind: KindUnavailable}))
	assert.False(t, IsRetryable(&Error{Kind: KindRateLimit}))
	assert.False(t, IsRetryable(&Error{Kind: KindOther}))
	assert.False(t, IsRetryable(nil))
}

func TestNewFactory(t *testing.T) {
	f, err := NewFactory(Options{Provider: NameFake})
	require.NoError(t, err)
	p, err := f(context.Background(), "")
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), Request{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultFakeResponse, out)

	f, err = NewFactory(Options{Provider: NameOpenAI})
	require.NoError(t, err)
	p, err = f(context.Background(), "sk-test")
	require.NoError(t, err)
	assert.Equal(t, "OpenAI:gpt-4o", p.Name())

	_, err = NewFactory(Options{Provider: "claude"})
	assert.Error(t, err)
}
