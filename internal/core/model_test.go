package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "canonical passes through", input: "status", expected: IntentStatus},
		{name: "upper case accepted", input: "DUVIDA", expected: IntentQuestion},
		{name: "unaccented question", input: "duvida", expected: IntentQuestion},
		{name: "plural thanks", input: "agradecimentos", expected: IntentThanks},
		{name: "singular greeting alias", input: "felicitacao", expected: IntentGreeting},
		{name: "plural greeting alias", input: "felicitacoes", expected: IntentGreeting},
		{name: "surrounding whitespace trimmed", input: "  suporte  ", expected: IntentSupport},
		{name: "empty defaults to outros", input: "", expected: IntentOther},
		{name: "unknown defaults to outros", input: "random", expected: IntentOther},
		{name: "accented canonical kept", input: "felicitações", expected: IntentGreeting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIntent(tt.input))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryProductive, NormalizeCategory("Produtivo"))
	assert.Equal(t, CategoryUnproductive, NormalizeCategory("Improdutivo"))
	assert.Equal(t, CategoryUnproductive, NormalizeCategory("produtivo"))
	assert.Equal(t, CategoryUnproductive, NormalizeCategory("spam"))
	assert.Equal(t, CategoryUnproductive, NormalizeCategory(""))
}
