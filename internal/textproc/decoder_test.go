package textproc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestSupportedFile(t *testing.T) {
	tests := []struct {
		filename string
		expected bool
	}{
		{"email.txt", true},
		{"EMAIL.TXT", true},
		{"report.pdf", true},
		{"Report.PDF", true},
		{"notes.doc", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, SupportedFile(tt.filename))
		})
	}
}

func TestDecodeTextFile(t *testing.T) {
	d := NewDecoder(zap.NewNop())

	t.Run("valid utf8", func(t *testing.T) {
		got := d.Decode("email.txt", []byte("Olá, preciso de suporte."))
		assert.Equal(t, "Olá, preciso de suporte.", got)
	})

	t.Run("invalid utf8 sequences dropped", func(t *testing.T) {
		got := d.Decode("email.txt", []byte{'o', 'i', 0xff, 0xfe, '!'})
		assert.Equal(t, "oi!", got)
	})

	t.Run("latin1 fallback when nothing survives utf8", func(t *testing.T) {
		// 0xe9 is é in ISO 8859-1 and invalid as standalone UTF-8.
		got := d.Decode("email.txt", []byte{0xe9})
		assert.Equal(t, "é", got)
	})
}

func TestDecodePDFFallsBackToRawText(t *testing.T) {
	d := NewDecoder(zap.NewNop())

	// Not a real PDF, but long valid UTF-8 text: structured extraction
	// fails and the raw UTF-8 strategy must accept it.
	body := strings.Repeat("conteúdo de e-mail em texto puro ", 10)
	got := d.Decode("fake.pdf", []byte(body))
	assert.Equal(t, body, got)
}

func TestDecodePDFRejectsShortRawText(t *testing.T) {
	d := NewDecoder(zap.NewNop())

	// Below the 100 non-whitespace character threshold every strategy
	// refuses, so decoding yields empty.
	got := d.Decode("fake.pdf", []byte("texto curto"))
	assert.Empty(t, got)
}

func TestDecodePDFGarbageYieldsEmpty(t *testing.T) {
	d := NewDecoder(zap.NewNop())

	got := d.Decode("broken.pdf", []byte{0x00, 0x01, 0x02, 0xff})
	assert.Empty(t, got)
}

func TestDecodeLatin1NeverFails(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}
	got := decodeLatin1(all)
	assert.NotEmpty(t, got)
}
