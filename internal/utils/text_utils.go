package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// truncationNotice is appended to bodies cut at the size limit so the
// model knows the content is partial.
const truncationNotice = "\n[... conteúdo truncado por limite de tamanho ...]"

// TextProcessor prepares email bodies before they are embedded in a
// model prompt.
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor.
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{logger: logger}
}

// Truncate cuts text at maxSize bytes without splitting a UTF-8 sequence.
// A maxSize of zero or less disables the limit.
func (tp *TextProcessor) Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Email body truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated + truncationNotice
}

// SanitizeUTF8 drops invalid UTF-8 sequences from text.
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// Prepare truncates and sanitizes text in one operation.
func (tp *TextProcessor) Prepare(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.Truncate(text, maxSize))
}
