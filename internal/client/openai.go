package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/polyglotai/polybench/internal/cache"
)

type openAIGenerateFunc func(ctx context.Context, model string, req *Request) (map[string]any, error)

// OpenAIClient is a caching client for OpenAI chat models.
type OpenAIClient struct {
	cache    *cache.Cache
	log      *zap.Logger
	generate openAIGenerateFunc
}

func NewOpenAIClient(apiKey, baseURL string, c *cache.Cache, log *zap.Logger) (*OpenAIClient, error) {
	if c == nil {
		return nil, errors.New("client: nil cache")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("client: missing openai api key")
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg := openai.DefaultConfig(strings.TrimSpace(apiKey))
	if v := strings.TrimSpace(baseURL); v != "" {
		cfg.BaseURL = strings.TrimRight(v, "/")
	}
	sdk := openai.NewClientWithConfig(cfg)

	oc := &OpenAIClient{cache: c, log: log}
	oc.generate = func(ctx context.Context, model string, req *Request) (map[string]any, error) {
		n := req.NumCompletions
		if n <= 0 {
			n = 1
		}
		resp, err := sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
			},
			MaxTokens:        req.MaxTokens,
			Temperature:      float32(req.Temperature),
			TopP:             float32(req.TopP),
			N:                n,
			Stop:             req.StopSequences,
			PresencePenalty:  float32(req.PresencePenalty),
			FrequencyPenalty: float32(req.FrequencyPenalty),
		})
		if err != nil {
			return nil, err
		}
		return responseToMap(resp)
	}
	return oc, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

type openAIRawResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	RequestTime     float64 `json:"request_time"`
	RequestDatetime int64   `json:"request_datetime"`
}

func (c *OpenAIClient) MakeRequest(ctx context.Context, req *Request) *RequestResult {
	if c == nil || c.cache == nil || c.generate == nil {
		return failureResult("openai: client not initialized", false, nil)
	}
	if ctx == nil {
		return failureResult("openai: nil context", false, nil)
	}
	if req == nil {
		return failureResult("openai: nil request", false, nil)
	}

	engine := req.ModelEngine()
	if engine == "" {
		return failureResult("openai: missing model", false, nil)
	}

	n := req.NumCompletions
	if n <= 0 {
		n = 1
	}
	rawRequest := map[string]any{
		"model":             engine,
		"prompt":            req.Prompt,
		"temperature":       req.Temperature,
		"top_p":             req.TopP,
		"max_tokens":        req.MaxTokens,
		"stop_sequences":    req.StopSequences,
		"n":                 n,
		"presence_penalty":  req.PresencePenalty,
		"frequency_penalty": req.FrequencyPenalty,
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
		return failureResult(fmt.Sprintf("openai client error: %v", err), false, &ErrorFlags{IsRetriable: true})
	}

	var resp openAIRawResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return failureResult(fmt.Sprintf("openai: decode raw response: %v", err), cached, nil)
	}
	if len(resp.Choices) == 0 {
		return failureResult("openai: empty choices", cached, nil)
	}

	completions := make([]GeneratedOutput, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		text := choice.Message.Content
		if req.EchoPrompt {
			text = req.Prompt + text
		}
		completions = append(completions, truncateSequence(GeneratedOutput{Text: text}, req, c.log))
	}

	return &RequestResult{
		Success:         true,
		Cached:          cached,
		Completions:     completions,
		RequestTime:     resp.RequestTime,
		RequestDatetime: resp.RequestDatetime,
	}
}
