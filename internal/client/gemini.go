package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/polyglotai/polybench/internal/cache"
)

// Safety-setting presets for the Gemini API. BlockNone disables content
// blocking for every supported harm category; Default leaves the
// provider's own thresholds in place.
const (
	SafetyPresetBlockNone = "block_none"
	SafetyPresetDefault   = "default"
)

var geminiHarmCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

func safetySettingsForPreset(preset string) ([]*genai.SafetySetting, error) {
	switch preset {
	case "", SafetyPresetBlockNone:
		out := make([]*genai.SafetySetting, 0, len(geminiHarmCategories))
		for _, category := range geminiHarmCategories {
			out = append(out, &genai.SafetySetting{
				Category:  category,
				Threshold: genai.HarmBlockThresholdBlockNone,
			})
		}
		return out, nil
	case SafetyPresetDefault:
		return nil, nil
	default:
		return nil, fmt.Errorf("client: unknown safety settings preset %q", preset)
	}
}

type geminiGenerateFunc func(ctx context.Context, model string, req *Request) (map[string]any, error)

// GeminiClient is a caching client for Gemini models. The SDK handle is
// per-client, so clients with different credentials can coexist.
type GeminiClient struct {
	cache    *cache.Cache
	log      *zap.Logger
	preset   string
	safety   []*genai.SafetySetting
	generate geminiGenerateFunc
}

func NewGeminiClient(ctx context.Context, apiKey, safetySettingsPreset string, c *cache.Cache, log *zap.Logger) (*GeminiClient, error) {
	if ctx == nil {
		return nil, errors.New("client: nil context")
	}
	if c == nil {
		return nil, errors.New("client: nil cache")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("client: missing gemini api key")
	}
	if log == nil {
		log = zap.NewNop()
	}

	safety, err := safetySettingsForPreset(safetySettingsPreset)
	if err != nil {
		return nil, err
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("client: new gemini client: %w", err)
	}

	gc := &GeminiClient{
		cache:  c,
		log:    log,
		preset: safetySettingsPreset,
		safety: safety,
	}
	gc.generate = func(ctx context.Context, model string, req *Request) (map[string]any, error) {
		resp, err := sdk.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc.generationConfig(req))
		if err != nil {
			return nil, err
		}
		return responseToMap(resp)
	}
	return gc, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) generationConfig(req *Request) *genai.GenerateContentConfig {
	n := req.NumCompletions
	if n <= 0 {
		n = 1
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		TopP:            genai.Ptr(float32(req.TopP)),
		MaxOutputTokens: int32(req.MaxTokens),
		CandidateCount:  int32(n),
		SafetySettings:  c.safety,
	}
	if req.TopKPerToken > 0 {
		cfg.TopK = genai.Ptr(float32(req.TopKPerToken))
	}
	if req.FrequencyPenalty != 0 {
		cfg.FrequencyPenalty = genai.Ptr(float32(req.FrequencyPenalty))
	}
	if req.PresencePenalty != 0 {
		cfg.PresencePenalty = genai.Ptr(float32(req.PresencePenalty))
	}
	if len(req.StopSequences) > 0 {
		cfg.StopSequences = req.StopSequences
	}
	return cfg
}

// geminiRawResponse is the explicit parse target for the stored raw
// response; missing fields fail validation instead of panicking on a
// loosely-typed map.
type geminiRawResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	RequestTime     float64 `json:"request_time"`
	RequestDatetime int64   `json:"request_datetime"`
}

func (c *GeminiClient) MakeRequest(ctx context.Context, req *Request) *RequestResult {
	if c == nil || c.cache == nil || c.generate == nil {
		return failureResult("gemini: client not initialized", false, nil)
	}
	if ctx == nil {
		return failureResult("gemini: nil context", false, nil)
	}
	if req == nil {
		return failureResult("gemini: nil request", false, nil)
	}

	engine := req.ModelEngine()
	if engine == "" {
		return failureResult("gemini: missing model", false, nil)
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
		"top_k_per_token":   req.TopKPerToken,
		"max_tokens":        req.MaxTokens,
		"stop_sequences":    req.StopSequences,
		"candidate_count":   n,
		"presence_penalty":  req.PresencePenalty,
		"frequency_penalty": req.FrequencyPenalty,
	}

	var modifiers map[string]any
	if c.preset != "" {
		modifiers = map[string]any{"safety_settings_preset": c.preset}
	}
	key, err := MakeCacheKey(rawRequest, modifiers)
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
		return failureResult(fmt.Sprintf("gemini client error: %v", err), false, &ErrorFlags{IsRetriable: true})
	}

	var resp geminiRawResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return failureResult(fmt.Sprintf("gemini: decode raw response: %v", err), cached, nil)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return failureResult(
				fmt.Sprintf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason),
				cached,
				&ErrorFlags{ContentBlocked: true},
			)
		}
		return failureResult("gemini: no candidates returned", cached, nil)
	}

	completions := make([]GeneratedOutput, 0, len(resp.Candidates))
	for _, cand := range resp.Candidates {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		text := sb.String()
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

func responseToMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("client: marshal provider response: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("client: reshape provider response: %w", err)
	}
	return out, nil
}
