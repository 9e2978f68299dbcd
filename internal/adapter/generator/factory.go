// Package generator holds the TextGenerator implementations used by the pipeline.
package generator

import (
	"context"
	"fmt"

	"compliance-coursegen/internal/config"
	"compliance-coursegen/internal/domain"

	"go.uber.org/zap"
)

// New returns the generator selected by cfg.Provider and a close func.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (domain.TextGenerator, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Provider {
	case config.ProviderVertexREST, "":
		if cfg.APIKey == "" {
			logger.Warn("Generation API key is not configured; requests will fail with CONFIG_ERROR")
		}
		return NewVertexREST(cfg, logger), noop, nil
	case config.ProviderVertexSDK:
		g, err := NewVertexSDK(ctx, cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		return g, g.Close, nil
	case config.ProviderOllama:
		g, err := NewOllama(cfg, logger)
		if err != nil {
			return nil, noop, err
		}
		return g, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported generation provider %q", cfg.Provider)
	}
}
