package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptStructure(t *testing.T) {
	content := "Poderiam informar o status do chamado 777?"
	prompt := BuildPrompt(content)

	// Instruction block leads
	assert.True(t, strings.HasPrefix(prompt, "Você é um assistente de triagem"))

	// All five exemplars are present, in fixed order
	last := -1
	for _, marker := range []string{"Exemplo 1:", "Exemplo 2:", "Exemplo 3:", "Exemplo 4:", "Exemplo 5:"} {
		idx := strings.Index(prompt, marker)
		require.NotEqual(t, -1, idx, "missing %s", marker)
		assert.Greater(t, idx, last)
		last = idx
	}

	// Exemplar outputs are rendered as JSON with accents intact
	assert.Contains(t, prompt, `"intent":"felicitações"`)
	assert.Contains(t, prompt, `"category":"Produtivo"`)

	// Target email is delimited and follows the exemplars
	assert.Contains(t, prompt, "-----\n"+content+"\n-----")
	assert.Greater(t, strings.Index(prompt, content), last)
}

func TestBuildPromptDeterministic(t *testing.T) {
	content := "Obrigado pela ajuda de ontem!"
	assert.Equal(t, BuildPrompt(content), BuildPrompt(content))
}

func TestBuildPromptOnlyContentVaries(t *testing.T) {
	a := BuildPrompt("primeiro e-mail de teste")
	b := BuildPrompt("segundo e-mail de teste")

	prefixA := a[:strings.Index(a, "-----")]
	prefixB := b[:strings.Index(b, "-----")]
	assert.Equal(t, prefixA, prefixB)
}
