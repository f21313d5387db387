package openai

import (
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/config"
	"github.com/mailtriage/email-analyzer/internal/core"
)

// Factory creates OpenAIClient instances from configuration.
type Factory struct {
	cfg    config.OpenAIConfig
	logger *zap.Logger
}

// NewFactory creates a new factory for OpenAIClient instances.
func NewFactory(cfg config.OpenAIConfig, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// CreateClient creates a new OpenAIClient.
func (f *Factory) CreateClient() (core.LLMClient, error) {
	return NewOpenAIClient(
		f.cfg.APIKey,
		f.cfg.ModelName,
		f.cfg.MaxTokens,
		f.cfg.Temperature,
		f.cfg.TopP,
		f.logger,
	), nil
}
