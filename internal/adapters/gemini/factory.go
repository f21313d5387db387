package gemini

import (
	"context"

	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/config"
	"github.com/mailtriage/email-analyzer/internal/core"
)

// Factory creates GeminiClient instances from configuration.
type Factory struct {
	cfg    config.GeminiConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for GeminiClient instances.
func NewFactory(cfg config.GeminiConfig, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateClient creates a new GeminiClient.
func (f *Factory) CreateClient() (core.LLMClient, error) {
	return NewGeminiClient(
		context.Background(),
		f.cfg.APIKey,
		f.cfg.ModelName,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.logger,
	)
}
