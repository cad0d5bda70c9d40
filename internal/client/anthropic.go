package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"go.uber.org/zap"

	"github.com/polyglotai/polybench/internal/cache"
)

type anthropicGenerateFunc func(ctx context.Context, model string, req *Request) (map[string]any, error)

// AnthropicClient is a caching client for Claude models via the
// messages API.
type AnthropicClient struct {
	cache    *cache.Cache
	log      *zap.Logger
	generate anthropicGenerateFunc
}

func NewAnthropicClient(apiKey, baseURL string, c *cache.Cache, log *zap.Logger) (*AnthropicClient, error) {
	if c == nil {
		return nil, errors.New("client: nil cache")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("client: missing anthropic api key")
	}
	if log == nil {
		log = zap.NewNop()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithMaxRetries(0),
	}
	if v := strings.TrimSpace(baseURL); v != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(v, "/")))
	}
	sdk := anthropic.NewClient(opts...)

	ac := &AnthropicClient{cache: c, log: log}
	ac.generate = func(ctx context.Context, model string, req *Request) (map[string]any, error) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: int64(req.MaxTokens),
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
			},
			Temperature: param.NewOpt(req.Temperature),
		}
		if req.TopP > 0 {
			params.TopP = param.NewOpt(req.TopP)
		}
		if req.TopKPerToken > 0 {
			params.TopK = param.NewOpt(int64(req.TopKPerToken))
		}
		if len(req.StopSequences) > 0 {
			params.StopSequences = req.StopSequences
		}

		msg, err := sdk.Messages.New(ctx, params)
		if err != nil {
			return nil, err
		}
		return responseToMap(msg)
	}
	return ac, nil
}

func (c *AnthropicClient) Name() string { return "claude" }

type anthropicRawResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason      string  `json:"stop_reason"`
	RequestTime     float64 `json:"request_time"`
	RequestDatetime int64   `json:"request_datetime"`
}

func (c *AnthropicClient) MakeRequest(ctx context.Context, req *Request) *RequestResult {
	if c == nil || c.cache == nil || c.generate == nil {
		return failureResult("anthropic: client not initialized", false, nil)
	}
	if ctx == nil {
		return failureResult("anthropic: nil context", false, nil)
	}
	if req == nil {
		return failureResult("anthropic: nil request", false, nil)
	}

	engine := req.ModelEngine()
	if engine == "" {
		return failureResult("anthropic: missing model", false, nil)
	}
	if req.NumCompletions > 1 {
		return failureResult(
			fmt.Sprintf("anthropic: num_completions > 1 not supported (got %d)", req.NumCompletions),
			false,
			nil,
		)
	}

	rawRequest := map[string]any{
		"model":           engine,
		"prompt":          req.Prompt,
		"temperature":     req.Temperature,
		"top_p":           req.TopP,
		"top_k_per_token": req.TopKPerToken,
		"max_tokens":      req.MaxTokens,
		"stop_sequences":  req.StopSequences,
	}

	key, err := MakeCacheKey(rawRequest, nil)
	if err != nil {
		return failureResult(err.Error(), false, nil)
	}
	fingerprint, err := cache.Fingerprint(key)
	if err != nil {
		return failureResult(err.Error(), false, nil)
	}

	raw, cached, err := c.cache.Get(ctx, fingerprint, wrapRequestTime(func() (map[string]any, error) {
		return c.generate(ctx, engine, req)
	}))
	if err != nil {
		return failureResult(fmt.Sprintf("anthropic client error: %v", err), false, &ErrorFlags{IsRetriable: true})
	}

	var resp anthropicRawResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return failureResult(fmt.Sprintf("anthropic: decode raw response: %v", err), cached, nil)
	}
	if len(resp.Content) == 0 {
		if resp.StopReason == "refusal" {
			return failureResult("anthropic: model refused the prompt", cached, &ErrorFlags{ContentBlocked: true})
		}
		return failureResult("anthropic: empty content", cached, nil)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if req.EchoPrompt {
		text = req.Prompt + text
	}

	return &RequestResult{
		Success:         true,
		Cached:          cached,
		Completions:     []GeneratedOutput{truncateSequence(GeneratedOutput{Text: text}, req, c.log)},
		RequestTime:     resp.RequestTime,
		RequestDatetime: resp.RequestDatetime,
	}
}
