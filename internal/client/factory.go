package client

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/polyglotai/polybench/internal/cache"
	"github.com/polyglotai/polybench/internal/config"
)

func NewRegistryFromConfig(ctx context.Context, cfg *config.Config, c *cache.Cache, log *zap.Logger) (*Registry, error) {
	if ctx == nil {
		return nil, errors.New("client: nil context")
	}
	if cfg == nil {
		return nil, errors.New("client: nil config")
	}
	if c == nil {
		return nil, errors.New("client: nil cache")
	}

	r := NewRegistry()
	for name, pcfg := range cfg.LLM.Providers {
		key := strings.ToLower(strings.TrimSpace(name))
		switch key {
		case "":
			continue
		case "gemini", "google":
			gc, err := NewGeminiClient(ctx, pcfg.APIKey, pcfg.SafetySettingsPreset, c, log)
			if err != nil {
				return nil, err
			}
			r.Register(gc)
		case "openai":
			oc, err := NewOpenAIClient(pcfg.APIKey, pcfg.BaseURL, c, log)
			if err != nil {
				return nil, err
			}
			r.Register(oc)
		case "claude", "anthropic":
			ac, err := NewAnthropicClient(pcfg.APIKey, pcfg.BaseURL, c, log)
			if err != nil {
				return nil, err
			}
			r.Register(ac)
		default:
			return nil, fmt.Errorf("client: unknown provider %q", name)
		}
	}
	return r, nil
}

// Resolve picks the client for a provider name, defaulting to the
// configured default provider, and reports the model to use.
func Resolve(reg *Registry, cfg *config.Config, providerOverride, modelOverride string) (Client, string, error) {
	if reg == nil {
		return nil, "", errors.New("client: nil registry")
	}
	if cfg == nil {
		return nil, "", errors.New("client: nil config")
	}

	providerName := strings.ToLower(strings.TrimSpace(providerOverride))
	if providerName == "" {
		providerName = strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	}
	if providerName == "anthropic" {
		providerName = "claude"
	}
	if providerName == "google" {
		providerName = "gemini"
	}
	if providerName == "" {
		return nil, "", errors.New("client: missing provider")
	}

	cl, ok := reg.Get(providerName)
	if !ok {
		available := reg.Names()
		sort.Strings(available)
		return nil, "", fmt.Errorf("client: provider %q not configured (available: %s)", providerName, strings.Join(available, ", "))
	}

	model := strings.TrimSpace(modelOverride)
	if model == "" {
		for name, pcfg := range cfg.LLM.Providers {
			key := strings.ToLower(strings.TrimSpace(name))
			if key == "anthropic" {
				key = "claude"
			}
			if key == "google" {
				key = "gemini"
			}
			if key == providerName {
				model = strings.TrimSpace(pcfg.Model)
				break
			}
		}
	}
	if model == "" {
		return nil, "", fmt.Errorf("client: no model configured for provider %q", providerName)
	}
	return cl, model, nil
}
