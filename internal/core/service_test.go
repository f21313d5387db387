package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/utils"
)

// fakeLLM is a scriptable LLMClient for service tests.
type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeLLM) GenerateStructured(_ context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, prompt)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeLLM) ModelID() string {
	return "fake-model"
}

func newTestService(llm LLMClient, maxRetries int) *TriageService {
	logger := zap.NewNop()
	return NewTriageService(llm, utils.NewTextProcessor(logger), logger, 0, maxRetries, 8192)
}

func TestClassifyParsesWrappedJSON(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		"Aqui está a análise:\n```json\n{\"category\":\"Produtivo\",\"intent\":\"status\",\"confidence\":0.93,\"suggested_reply\":\"Vamos verificar o chamado.\"}\n```",
	}}
	svc := newTestService(llm, 0)

	result, err := svc.Classify(context.Background(), "Qual o status do chamado 12345?")
	require.NoError(t, err)
	assert.Equal(t, CategoryProductive, result.Category)
	assert.Equal(t, IntentStatus, result.Metadata.Intent)
	assert.Equal(t, 0.93, result.Confidence)
	assert.Equal(t, "Vamos verificar o chamado.", result.SuggestedReply)
}

func TestClassifyDefaultsMissingFields(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"category":"Produtivo","intent":"suporte"}`,
	}}
	svc := newTestService(llm, 0)

	result, err := svc.Classify(context.Background(), "O sistema está fora do ar.")
	require.NoError(t, err)
	assert.Equal(t, defaultConfidence, result.Confidence)
	assert.Equal(t, DefaultReply, result.SuggestedReply)
}

func TestClassifyNormalizesBadValues(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"category":"Spam","intent":"DUVIDA","confidence":0.4,"suggested_reply":"  "}`,
	}}
	svc := newTestService(llm, 0)

	result, err := svc.Classify(context.Background(), "Como faço para emitir a fatura?")
	require.NoError(t, err)
	assert.Equal(t, CategoryUnproductive, result.Category)
	assert.Equal(t, IntentQuestion, result.Metadata.Intent)
	assert.Equal(t, 0.4, result.Confidence)
	assert.Equal(t, DefaultReply, result.SuggestedReply)
}

func TestClassifyKeepsZeroConfidence(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"category":"Improdutivo","intent":"outros","confidence":0.0,"suggested_reply":"Ok."}`,
	}}
	svc := newTestService(llm, 0)

	result, err := svc.Classify(context.Background(), "mensagem qualquer de teste")
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestClassifySchemaParseError(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{name: "no braces", output: "desculpe, não consegui analisar"},
		{name: "closing before opening", output: "} texto {"},
		{name: "invalid json inside braces", output: `{"category": Produtivo}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{responses: []string{tt.output}}
			svc := newTestService(llm, 0)

			_, err := svc.Classify(context.Background(), "qualquer conteúdo de e-mail")
			assert.ErrorIs(t, err, ErrSchemaParse)
		})
	}
}

func TestClassifyCommunicationError(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection refused")}}
	svc := newTestService(llm, 0)

	_, err := svc.Classify(context.Background(), "qualquer conteúdo de e-mail")
	assert.ErrorIs(t, err, ErrModelCommunication)
	assert.Equal(t, 1, llm.calls)
}

func TestClassifyEmptyPayloadIsCommunicationError(t *testing.T) {
	llm := &fakeLLM{responses: []string{"   "}}
	svc := newTestService(llm, 0)

	_, err := svc.Classify(context.Background(), "qualquer conteúdo de e-mail")
	assert.ErrorIs(t, err, ErrModelCommunication)
}

func TestClassifyRetriesCommunicationFailures(t *testing.T) {
	llm := &fakeLLM{
		errs: []error{errors.New("transient"), nil},
		responses: []string{
			"",
			`{"category":"Produtivo","intent":"anexo","confidence":0.8,"suggested_reply":"Recebido, vamos validar."}`,
		},
	}
	svc := newTestService(llm, 1)

	result, err := svc.Classify(context.Background(), "Segue em anexo o contrato.")
	require.NoError(t, err)
	assert.Equal(t, 2, llm.calls)
	assert.Equal(t, IntentAttachment, result.Metadata.Intent)
}

func TestClassifyDoesNotRetrySchemaFailures(t *testing.T) {
	llm := &fakeLLM{responses: []string{"sem json aqui", "sem json aqui"}}
	svc := newTestService(llm, 2)

	_, err := svc.Classify(context.Background(), "qualquer conteúdo de e-mail")
	assert.ErrorIs(t, err, ErrSchemaParse)
	assert.Equal(t, 1, llm.calls)
}

func TestClassifyTruncatesLongContent(t *testing.T) {
	llm := &fakeLLM{responses: []string{
		`{"category":"Produtivo","intent":"status","confidence":0.9,"suggested_reply":"Ok."}`,
	}}
	logger := zap.NewNop()
	svc := NewTriageService(llm, utils.NewTextProcessor(logger), logger, 0, 0, 64)

	long := ""
	for i := 0; i < 100; i++ {
		long += "conteúdo repetido "
	}
	_, err := svc.Classify(context.Background(), long)
	require.NoError(t, err)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "[... conteúdo truncado por limite de tamanho ...]")
}
