package client

import (
	"context"
	"strings"
)

// Request describes a desired generation. It is built by the caller and
// never mutated by a client.
type Request struct {
	// Model is "provider/engine" or a bare engine name.
	Model            string
	Prompt           string
	Temperature      float64
	TopP             float64
	TopKPerToken     int
	MaxTokens        int
	StopSequences    []string
	NumCompletions   int
	PresencePenalty  float64
	FrequencyPenalty float64
	// EchoPrompt asks for the prompt text to be prepended to the
	// completion. Handled locally, never delegated to the provider.
	EchoPrompt bool
}

// ModelEngine returns the provider-local model name.
func (r *Request) ModelEngine() string {
	if r == nil {
		return ""
	}
	model := strings.TrimSpace(r.Model)
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}

type Token struct {
	Text    string  `json:"text"`
	Logprob float64 `json:"logprob"`
}

type GeneratedOutput struct {
	Text    string  `json:"text"`
	Logprob float64 `json:"logprob"`
	Tokens  []Token `json:"tokens,omitempty"`
}

// ErrorFlags classifies a failure so callers can decide whether to
// retry, skip, or surface it.
type ErrorFlags struct {
	IsRetriable    bool `json:"is_retriable,omitempty"`
	ContentBlocked bool `json:"content_blocked,omitempty"`
}

// RequestResult is the uniform output of every client.
type RequestResult struct {
	Success     bool
	Cached      bool
	Completions []GeneratedOutput
	Embedding   []float64
	Error       string
	ErrorFlags  *ErrorFlags
	// RequestTime is the wall-clock duration in seconds of the original
	// provider call; on cache hits it reports the stored call, not zero.
	RequestTime float64
	// RequestDatetime is the unix timestamp the original call started.
	RequestDatetime int64
}

// Client is a caching adapter for one generative-AI provider. MakeRequest
// never panics and never reports failures out-of-band: every provider,
// network, or parsing problem comes back as a RequestResult with
// Success=false and Error set.
type Client interface {
	Name() string
	MakeRequest(ctx context.Context, req *Request) *RequestResult
}

func failureResult(errMsg string, cached bool, flags *ErrorFlags) *RequestResult {
	return &RequestResult{
		Success:    false,
		Cached:     cached,
		Error:      errMsg,
		ErrorFlags: flags,
	}
}
