package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mailtriage/email-analyzer/internal/core"
)

// outputSchema constrains the model to the classification contract.
var outputSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category": {
			Type: genai.TypeString,
			Enum: []string{string(core.CategoryProductive), string(core.CategoryUnproductive)},
		},
		"intent":          {Type: genai.TypeString},
		"confidence":      {Type: genai.TypeNumber},
		"suggested_reply": {Type: genai.TypeString},
	},
	Required: []string{"category", "intent", "confidence", "suggested_reply"},
}

// GeminiClient implements the LLMClient interface using Google Gemini
// with a declared JSON response schema.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = outputSchema

	return &GeminiClient{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close closes the Gemini client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelID reports the configured model name.
func (c *GeminiClient) ModelID() string {
	return c.modelName
}

// GenerateStructured sends the prompt and returns the textual payload of
// the response. When the joined text parts are empty it falls back to
// stringifying the first candidate part.
func (c *GeminiClient) GenerateStructured(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		// Secondary extraction path for non-text parts.
		fmt.Fprintf(&b, "%v", resp.Candidates[0].Content.Parts[0])
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("no readable text in Gemini response")
	}

	return b.String(), nil
}
