package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/batch"
	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/textproc"
	"github.com/mailtriage/email-analyzer/internal/utils"
)

type fakeLLM struct {
	response string
	err      error
}

func (f *fakeLLM) GenerateStructured(context.Context, string) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) ModelID() string {
	return "fake-model"
}

func newTestServer(llm core.LLMClient) *Server {
	logger := zap.NewNop()
	svc := core.NewTriageService(llm, utils.NewTextProcessor(logger), logger, 0, 0, 8192)
	decoder := textproc.NewDecoder(logger)
	orch := batch.NewOrchestrator(svc, decoder, logger, 4)
	return NewServer(svc, orch, decoder, logger, "127.0.0.1:0")
}

func okLLM() *fakeLLM {
	return &fakeLLM{
		response: `{"category":"Produtivo","intent":"status","confidence":0.9,"suggested_reply":"Vamos verificar o chamado."}`,
	}
}

func postForm(t *testing.T, s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func postMultipart(t *testing.T, s *Server, path string, fields map[string]string, files map[string][]byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, data := range files {
		field := "file"
		if path == "/api/analyze_batch" {
			field = "files"
		}
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(okLLM())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "fake-model", body["model"])
}

func TestAnalyzeMissingInput(t *testing.T) {
	s := newTestServer(okLLM())

	w := postForm(t, s, "/api/analyze", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, detailMissingInput, decodeBody(t, w)["detail"])
}

func TestAnalyzeText(t *testing.T) {
	s := newTestServer(okLLM())

	w := postForm(t, s, "/api/analyze", url.Values{
		"text": {"Poderiam informar o status do chamado 12345?"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Produtivo", body["category"])
	assert.Equal(t, 0.9, body["confidence"])
	assert.Equal(t, "Vamos verificar o chamado.", body["suggested_reply"])

	metadata, ok := body["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "status", metadata["intent"])
}

func TestAnalyzeEmptyAfterCleaning(t *testing.T) {
	s := newTestServer(okLLM())

	w := postForm(t, s, "/api/analyze", url.Values{"text": {"oi"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, detailEmptyContent, decodeBody(t, w)["detail"])
}

func TestAnalyzeUnsupportedFile(t *testing.T) {
	s := newTestServer(okLLM())

	w := postMultipart(t, s, "/api/analyze", nil, map[string][]byte{
		"report.docx": []byte("conteúdo qualquer"),
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, detailUnsupportedFile, decodeBody(t, w)["detail"])
}

func TestAnalyzeTextFileUpload(t *testing.T) {
	s := newTestServer(okLLM())

	w := postMultipart(t, s, "/api/analyze", nil, map[string][]byte{
		"pedido.txt": []byte("Preciso do relatório mensal de vendas até sexta-feira."),
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Produtivo", decodeBody(t, w)["category"])
}

func TestAnalyzeModelFailure(t *testing.T) {
	s := newTestServer(&fakeLLM{err: errors.New("connection refused")})

	w := postForm(t, s, "/api/analyze", url.Values{
		"text": {"Poderiam informar o status do chamado 12345?"},
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "connection refused")
}

func TestAnalyzeBatch(t *testing.T) {
	s := newTestServer(okLLM())

	w := postMultipart(t, s, "/api/analyze_batch",
		map[string]string{
			"texts": `["Qual o status do chamado 777?", "Segue em anexo o contrato para validação."]`,
		},
		map[string][]byte{
			"pedido.txt": []byte("Preciso do relatório mensal de vendas até sexta-feira."),
		})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["count"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 3)

	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "text-0", first["id"])

	last, ok := results[2].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pedido.txt", last["id"])
}

func TestAnalyzeBatchInvalidTexts(t *testing.T) {
	s := newTestServer(okLLM())

	w := postForm(t, s, "/api/analyze_batch", url.Values{
		"texts": {`{"not": "a list"}`},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["detail"], "lista de strings")
}

func TestAnalyzeBatchNoValidItems(t *testing.T) {
	s := newTestServer(okLLM())

	w := postForm(t, s, "/api/analyze_batch", url.Values{
		"texts": {`["", "   "]`},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, detailNoValidItems, decodeBody(t, w)["detail"])
}
