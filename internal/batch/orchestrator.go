// Package batch expands batch submissions into independent classification
// tasks with per-item failure isolation.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/textproc"
)

var (
	// ErrInvalidTexts indicates the texts field is not a JSON list of
	// strings.
	ErrInvalidTexts = errors.New("campo 'texts' deve ser JSON válido (lista de strings)")

	// ErrNoValidItems indicates no usable item came out of either source.
	ErrNoValidItems = errors.New("nenhum item válido para analisar")
)

// File is one uploaded file in a batch request.
type File struct {
	Name string
	Data []byte
}

// Orchestrator fans a batch of texts and files out through the triage
// service. One bad item never aborts the batch.
type Orchestrator struct {
	svc            *core.TriageService
	decoder        *textproc.Decoder
	logger         *zap.Logger
	maxConcurrency int
}

// NewOrchestrator creates a batch orchestrator. maxConcurrency bounds the
// number of model calls in flight; values below 1 mean sequential.
func NewOrchestrator(
	svc *core.TriageService,
	decoder *textproc.Decoder,
	logger *zap.Logger,
	maxConcurrency int,
) *Orchestrator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Orchestrator{
		svc:            svc,
		decoder:        decoder,
		logger:         logger,
		maxConcurrency: maxConcurrency,
	}
}

// Run expands the inputs into batch items and classifies each one
// independently. Results keep discovery order: all text items first, then
// all file items, each in submission order. textsJSON may be empty.
func (o *Orchestrator) Run(ctx context.Context, textsJSON string, files []File) ([]core.BatchResult, error) {
	items, err := o.collectItems(textsJSON, files)
	if err != nil {
		return nil, err
	}

	o.logger.Info("Processing batch",
		zap.Int("items", len(items)),
		zap.Int("max_concurrency", o.maxConcurrency))

	results := make([]core.BatchResult, len(items))
	sem := make(chan struct{}, o.maxConcurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		go func(i int, item core.BatchItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := o.svc.Classify(ctx, item.Content)
			if err != nil {
				o.logger.Warn("Batch item failed",
					zap.String("item_id", item.ID),
					zap.Error(err))
				results[i] = degradedResult(item.ID, err)
				return
			}
			results[i] = core.BatchResult{ID: item.ID, ClassificationResult: *res}
		}(i, item)
	}
	wg.Wait()

	return results, nil
}

// collectItems validates and normalizes both input sources. Text entries
// and files whose cleaned content is empty are excluded silently; a
// malformed texts field fails before any file is touched.
func (o *Orchestrator) collectItems(textsJSON string, files []File) ([]core.BatchItem, error) {
	var items []core.BatchItem

	if textsJSON != "" {
		var texts []string
		if err := json.Unmarshal([]byte(textsJSON), &texts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTexts, err)
		}
		for i, t := range texts {
			if strings.TrimSpace(t) == "" {
				continue
			}
			content := textproc.Clean(t)
			if content == "" {
				continue
			}
			items = append(items, core.BatchItem{
				ID:      fmt.Sprintf("text-%d", i),
				Content: content,
			})
		}
	}

	for i, f := range files {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("file-%d", i)
		}
		if !textproc.SupportedFile(name) {
			o.logger.Debug("Skipping unsupported file", zap.String("filename", name))
			continue
		}
		if len(f.Data) == 0 {
			o.logger.Debug("Skipping empty file", zap.String("filename", name))
			continue
		}

		raw := o.decoder.Decode(name, f.Data)
		if raw == "" {
			o.logger.Warn("File could not be decoded", zap.String("filename", name))
			continue
		}
		content := textproc.Clean(raw)
		if content == "" {
			o.logger.Warn("File produced no usable content after cleaning",
				zap.String("filename", name))
			continue
		}
		items = append(items, core.BatchItem{ID: name, Content: content})
	}

	if len(items) == 0 {
		return nil, ErrNoValidItems
	}
	return items, nil
}

// degradedResult stands in for a failed item so the batch response keeps
// one entry per item.
func degradedResult(id string, err error) core.BatchResult {
	return core.BatchResult{
		ID: id,
		ClassificationResult: core.ClassificationResult{
			Category:       core.CategoryUnproductive,
			Confidence:     0.0,
			SuggestedReply: fmt.Sprintf("Erro ao processar: %v", err),
			Metadata:       core.ResultMetadata{Intent: core.IntentOther},
		},
	}
}
