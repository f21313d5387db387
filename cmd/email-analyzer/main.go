package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/di"
	"github.com/mailtriage/email-analyzer/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	transports []ports.Transport,
	llmClient core.LLMClient,
) error {
	defer logger.Sync()

	logger.Info("Starting email analyzer", zap.String("model", llmClient.ModelID()))

	// Start the transports
	for _, t := range transports {
		if err := t.Start(); err != nil {
			logger.Fatal("Failed to start transport", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	for _, t := range transports {
		if err := t.Stop(); err != nil {
			logger.Error("Failed to stop transport", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
