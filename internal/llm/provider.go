// Package llm adapts hosted language models to the extraction pipeline.
package llm

import (
	"context"
	"fmt"
	"math"

	"tajeryar/internal/extraction"
	"tajeryar/pkg/config"

	"go.uber.org/zap"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGigaChat   = "gigachat"
)

// Provider is a generator that owns network resources.
type Provider interface {
	extraction.Generator
	Close() error
}

var (
	_ extraction.VisionGenerator = (*OpenRouter)(nil)
	_ extraction.VisionGenerator = (*GigaChat)(nil)
)

// New builds the provider selected by cfg.LLM.Provider.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Provider, error) {
	switch cfg.LLM.Provider {
	case ProviderOpenRouter:
		logger.Info("Using OpenRouter model", zap.String("model", cfg.OpenRouter.Model))
		return NewOpenRouter(&cfg.OpenRouter, logger), nil
	case ProviderGigaChat:
		logger.Info("Using GigaChat model", zap.String("model", cfg.GigaChat.Model))
		return NewGigaChat(ctx, &cfg.GigaChat, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// temperature never returns zero; go-openai omits a zero Temperature from the
// request body.
func temperature(s extraction.Sampling) float32 {
	if s.Temperature <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return s.Temperature
}
