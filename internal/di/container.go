package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/batch"
	"github.com/mailtriage/email-analyzer/internal/config"
	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/factory"
	"github.com/mailtriage/email-analyzer/internal/logging"
	"github.com/mailtriage/email-analyzer/internal/ports"
	"github.com/mailtriage/email-analyzer/internal/textproc"
	"github.com/mailtriage/email-analyzer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processing
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}
	if err := container.Provide(textproc.NewDecoder); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(func(
		llm core.LLMClient,
		textProc *utils.TextProcessor,
		logger *zap.Logger,
		cfg *config.Config,
	) *core.TriageService {
		llmCfg := cfg.GetLLM()
		return core.NewTriageService(
			llm,
			textProc,
			logger,
			llmCfg.Timeout,
			llmCfg.MaxRetries,
			llmCfg.MaxBodySize,
		)
	}); err != nil {
		return nil, err
	}

	// Register batch orchestrator
	if err := container.Provide(func(
		svc *core.TriageService,
		decoder *textproc.Decoder,
		logger *zap.Logger,
		cfg *config.Config,
	) *batch.Orchestrator {
		return batch.NewOrchestrator(svc, decoder, logger, cfg.GetBatch().MaxConcurrency)
	}); err != nil {
		return nil, err
	}

	// Register transports
	if err := container.Provide(factory.NewTransportFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TransportFactory) ([]ports.Transport, error) {
		return f.CreateTransports()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
