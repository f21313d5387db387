package textproc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	dslipakpdf "github.com/dslipak/pdf"
	ledongpdf "github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// rawTextThreshold is the minimum non-whitespace length for a raw byte
// decode of a PDF to be accepted as extracted text.
const rawTextThreshold = 100

// pdfStrategy is one extraction attempt in the ordered fallback chain.
// extract is best-effort; accept decides whether its output counts.
type pdfStrategy struct {
	name    string
	extract func(data []byte) (string, error)
	accept  func(text string) bool
}

// Decoder converts uploaded file bytes into plain text. It never returns
// an error: total extraction failure yields an empty string, which the
// caller surfaces as empty content.
type Decoder struct {
	logger     *zap.Logger
	strategies []pdfStrategy
}

// NewDecoder creates a decoder with the standard PDF fallback chain:
// page-based extraction, whole-document extraction with an independent
// reader, then raw UTF-8 and Latin-1 decoding guarded by a length
// threshold.
func NewDecoder(logger *zap.Logger) *Decoder {
	return &Decoder{
		logger: logger,
		strategies: []pdfStrategy{
			{
				name:    "pdf_pages",
				extract: extractPDFPages,
				accept:  hasContent,
			},
			{
				name:    "pdf_document",
				extract: extractPDFDocument,
				accept:  hasContent,
			},
			{
				name: "raw_utf8",
				extract: func(data []byte) (string, error) {
					return decodeUTF8Lossy(data), nil
				},
				accept: passesRawThreshold,
			},
			{
				name: "raw_latin1",
				extract: func(data []byte) (string, error) {
					return decodeLatin1(data), nil
				},
				accept: passesRawThreshold,
			},
		},
	}
}

// SupportedFile reports whether the filename has an accepted extension.
func SupportedFile(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".pdf")
}

// Decode converts file bytes to text. PDF files go through the fallback
// chain; anything else is decoded as UTF-8 with Latin-1 as last resort.
func (d *Decoder) Decode(filename string, data []byte) string {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return d.decodePDF(filename, data)
	}

	if text := decodeUTF8Lossy(data); text != "" {
		return text
	}
	return decodeLatin1(data)
}

func (d *Decoder) decodePDF(filename string, data []byte) string {
	for _, strategy := range d.strategies {
		text, err := strategy.extract(data)
		if err != nil {
			d.logger.Debug("PDF extraction strategy failed",
				zap.String("strategy", strategy.name),
				zap.String("filename", filename),
				zap.Error(err))
			continue
		}
		if !strategy.accept(text) {
			continue
		}
		d.logger.Debug("PDF extracted",
			zap.String("strategy", strategy.name),
			zap.String("filename", filename),
			zap.Int("size", len(text)))
		return text
	}

	d.logger.Warn("All PDF extraction strategies failed",
		zap.String("filename", filename),
		zap.Int("size", len(data)))
	return ""
}

func hasContent(text string) bool {
	return strings.TrimSpace(text) != ""
}

func passesRawThreshold(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) > rawTextThreshold
}

// extractPDFPages extracts text page by page. The reader panics on some
// malformed documents, so recover converts that into an error and lets
// the chain move on.
func extractPDFPages(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf page reader panic: %v", r)
		}
	}()

	reader, err := ledongpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}

// extractPDFDocument extracts the whole document in one pass with a
// second, independently implemented reader.
func extractPDFDocument(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf document reader panic: %v", r)
		}
	}()

	reader, err := dslipakpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// decodeUTF8Lossy drops invalid byte sequences, like decoding with
// errors ignored.
func decodeUTF8Lossy(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}

// decodeLatin1 maps every byte to its ISO 8859-1 code point; it cannot
// fail.
func decodeLatin1(data []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// Every byte is a valid ISO 8859-1 code point.
		return string(data)
	}
	return string(out)
}
