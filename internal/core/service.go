package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/utils"
)

// modelOutput is the parse target for the model's structured answer.
// Confidence is a pointer so an absent field can be told apart from 0.
type modelOutput struct {
	Category       string   `json:"category"`
	Intent         string   `json:"intent"`
	Confidence     *float64 `json:"confidence"`
	SuggestedReply string   `json:"suggested_reply"`
}

// defaultConfidence is assumed when the model omits the confidence field.
const defaultConfidence = 0.7

// TriageService is the core email classification pipeline: it builds the
// prompt, calls the model with a timeout and bounded retry, parses the
// structured payload and normalizes every field.
type TriageService struct {
	llm         LLMClient
	textProc    *utils.TextProcessor
	logger      *zap.Logger
	timeout     time.Duration
	maxRetries  int
	maxBodySize int
}

// NewTriageService creates a new triage service.
func NewTriageService(
	llm LLMClient,
	textProc *utils.TextProcessor,
	logger *zap.Logger,
	timeout time.Duration,
	maxRetries int,
	maxBodySize int,
) *TriageService {
	return &TriageService{
		llm:         llm,
		textProc:    textProc,
		logger:      logger,
		timeout:     timeout,
		maxRetries:  maxRetries,
		maxBodySize: maxBodySize,
	}
}

// ModelID reports the identifier of the backing model.
func (s *TriageService) ModelID() string {
	return s.llm.ModelID()
}

// Classify runs one cleaned email body through the model and returns a
// structurally valid result. It fails with ErrModelCommunication when the
// service is unreachable or yields no text, and with ErrSchemaParse when
// the returned text contains no JSON object.
func (s *TriageService) Classify(ctx context.Context, content string) (*ClassificationResult, error) {
	prompt := BuildPrompt(s.textProc.Prepare(content, s.maxBodySize))

	raw, err := s.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	out, err := parseModelOutput(raw)
	if err != nil {
		s.logger.Warn("Unparsable model output",
			zap.String("model", s.llm.ModelID()),
			zap.Int("output_size", len(raw)))
		return nil, err
	}

	return s.normalize(out), nil
}

// generateWithRetry calls the model, retrying communication failures with
// a linear backoff. Schema problems are never retried.
func (s *TriageService) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var raw string
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			s.logger.Warn("Retrying model call",
				zap.Int("attempt", attempt),
				zap.Error(err))
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrModelCommunication, ctx.Err())
			}
		}
		raw, err = s.generate(ctx, prompt)
		if err == nil || !errors.Is(err, ErrModelCommunication) {
			break
		}
	}
	return raw, err
}

func (s *TriageService) generate(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.llm.GenerateStructured(callCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCommunication, err)
	}
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("%w: empty payload", ErrModelCommunication)
	}
	return raw, nil
}

// parseModelOutput locates the first '{' and the last '}' in the text and
// parses that substring, tolerating wrapper text some models emit around
// the JSON object.
func parseModelOutput(text string) (*modelOutput, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no object bounds", ErrSchemaParse)
	}

	var out modelOutput
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}
	return &out, nil
}

// normalize never fails: every malformed or missing field is replaced with
// a safe default so callers always receive a structurally valid result.
func (s *TriageService) normalize(out *modelOutput) *ClassificationResult {
	confidence := defaultConfidence
	if out.Confidence != nil {
		confidence = *out.Confidence
	}

	reply := strings.TrimSpace(out.SuggestedReply)
	if reply == "" {
		reply = DefaultReply
	}

	return &ClassificationResult{
		Category:       NormalizeCategory(out.Category),
		Confidence:     confidence,
		SuggestedReply: reply,
		Metadata:       ResultMetadata{Intent: NormalizeIntent(out.Intent)},
	}
}
