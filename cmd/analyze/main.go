package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/config"
	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/factory"
	"github.com/mailtriage/email-analyzer/internal/logging"
	"github.com/mailtriage/email-analyzer/internal/textproc"
	"github.com/mailtriage/email-analyzer/internal/utils"
)

var (
	// LLM provider flags
	provider    = flag.String("provider", "gemini", "LLM provider (gemini, openai, bedrock)")
	maxTokens   = flag.Int("max-tokens", 512, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.2, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4o-mini", "OpenAI model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Input flags
	inputFile  = flag.String("file", "", "Input .txt/.pdf file (use stdin text if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file",
			zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	llmClient, err := factory.NewLLMFactory(cfg, logger).CreateLLMClient()
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	decoder := textproc.NewDecoder(logger)
	llmCfg := cfg.GetLLM()
	svc := core.NewTriageService(
		llmClient,
		utils.NewTextProcessor(logger),
		logger,
		llmCfg.Timeout,
		llmCfg.MaxRetries,
		llmCfg.MaxBodySize,
	)

	// Read the email from a file or stdin
	var raw string
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			logger.Fatal("Failed to read input file",
				zap.Error(err),
				zap.String("file", *inputFile))
		}
		if !textproc.SupportedFile(*inputFile) {
			logger.Fatal("Unsupported file format, use .txt or .pdf",
				zap.String("file", *inputFile))
		}
		raw = decoder.Decode(*inputFile, data)
	} else {
		logger.Info("Reading email text from stdin")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Fatal("Failed to read stdin", zap.Error(err))
		}
		raw = string(data)
	}

	content := textproc.Clean(raw)
	if content == "" {
		logger.Fatal("Input has no usable content after cleaning")
	}

	fmt.Printf("\n=== Input ===\n")
	fmt.Printf("Provider: %s\n", cfg.GetString("llm.provider"))
	fmt.Printf("Model: %s\n", llmClient.ModelID())
	fmt.Printf("Content length: %d bytes\n", len(content))

	startTime := time.Now()
	result, err := svc.Classify(context.Background(), content)
	if err != nil {
		logger.Fatal("Failed to classify email", zap.Error(err))
	}

	fmt.Printf("\n=== Result ===\n")
	fmt.Printf("Category: %s\n", result.Category)
	fmt.Printf("Intent: %s\n", result.Metadata.Intent)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Suggested reply: %s\n", result.SuggestedReply)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))

	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("llm.provider", *provider)

	switch *provider {
	case "gemini":
		if *geminiAPIKey != "" {
			v.Set("gemini.api_key", *geminiAPIKey)
		} else {
			v.Set("gemini.api_key", os.Getenv("GOOGLE_API_KEY"))
		}
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
	}

	return config.NewFromViper(v)
}
