package core

import (
	"strings"
)

// Category is the top-level triage label for an email.
type Category string

const (
	// CategoryProductive marks emails that request an action, information
	// or a specific answer (support, status, question, attachment handling).
	CategoryProductive Category = "Produtivo"
	// CategoryUnproductive marks social messages that need no action
	// (greetings, thanks).
	CategoryUnproductive Category = "Improdutivo"
)

// Canonical intent labels.
const (
	IntentStatus     = "status"
	IntentAttachment = "anexo"
	IntentSupport    = "suporte"
	IntentQuestion   = "dúvida"
	IntentGreeting   = "felicitações"
	IntentThanks     = "agradecimento"
	IntentOther      = "outros"
)

// DefaultReply is used when the model returns an empty suggested reply.
const DefaultReply = "Obrigado pela mensagem!"

var canonicalIntents = map[string]bool{
	IntentStatus:     true,
	IntentAttachment: true,
	IntentSupport:    true,
	IntentQuestion:   true,
	IntentGreeting:   true,
	IntentThanks:     true,
	IntentOther:      true,
}

// intentAliases maps unaccented or pluralized spellings the model tends to
// emit to the canonical labels.
var intentAliases = map[string]string{
	"duvida":         IntentQuestion,
	"agradecimentos": IntentThanks,
	"felicitacao":    IntentGreeting,
	"felicitacoes":   IntentGreeting,
}

// NormalizeCategory coerces a raw category value to one of the two valid
// labels, defaulting to Improdutivo.
func NormalizeCategory(v string) Category {
	if Category(v) == CategoryProductive {
		return CategoryProductive
	}
	return CategoryUnproductive
}

// NormalizeIntent lower-cases and trims a raw intent value, resolves known
// misspellings and falls back to "outros" for anything unrecognized.
func NormalizeIntent(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return IntentOther
	}
	if canonical, ok := intentAliases[v]; ok {
		v = canonical
	}
	if !canonicalIntents[v] {
		return IntentOther
	}
	return v
}

// ResultMetadata carries secondary classification fields.
type ResultMetadata struct {
	Intent string `json:"intent"`
}

// ClassificationResult is the structured outcome of classifying one email.
// Immutable once produced.
type ClassificationResult struct {
	Category       Category       `json:"category"`
	Confidence     float64        `json:"confidence"`
	SuggestedReply string         `json:"suggested_reply"`
	Metadata       ResultMetadata `json:"metadata"`
}

// BatchItem is one unit of work in a batch request. ID is either a
// synthetic "text-<i>" label or the uploaded filename.
type BatchItem struct {
	ID      string
	Content string
}

// BatchResult is a ClassificationResult tagged with the originating item's
// id. Failed items carry a degraded result instead of aborting the batch.
type BatchResult struct {
	ID string `json:"id"`
	ClassificationResult
}
