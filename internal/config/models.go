package config

import "time"

// LLMConfig represents provider-independent model call settings
type LLMConfig struct {
	Provider    string
	Timeout     time.Duration
	MaxRetries  int
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// ServerConfig represents the HTTP transport configuration
type ServerConfig struct {
	ListenAddress string
}

// SMTPConfig represents the optional SMTP tagging transport configuration
type SMTPConfig struct {
	Enabled       bool
	ListenAddress string
	RelayAddress  string
	RelayPort     int
}

// BatchConfig represents batch processing settings
type BatchConfig struct {
	MaxConcurrency int
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:    c.GetString("llm.provider"),
		Timeout:     c.GetDuration("llm.timeout"),
		MaxRetries:  c.GetInt("llm.max_retries"),
		MaxBodySize: c.GetInt("llm.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetServer returns the HTTP transport configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetSMTP returns the SMTP tagging transport configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:       c.GetBool("smtp.enabled"),
		ListenAddress: c.GetString("smtp.listen_address"),
		RelayAddress:  c.GetString("smtp.relay_address"),
		RelayPort:     c.GetInt("smtp.relay_port"),
	}
}

// GetBatch returns the batch processing configuration
func (c *Config) GetBatch() BatchConfig {
	return BatchConfig{
		MaxConcurrency: c.GetInt("batch.max_concurrency"),
	}
}
