package core

import (
	"context"
)

// LLMClient defines the interface for the generative model service. The
// output schema and sampling configuration are fixed per client at
// construction time; only the prompt varies per call.
type LLMClient interface {
	// GenerateStructured sends the prompt and returns the raw textual
	// payload of the model response.
	GenerateStructured(ctx context.Context, prompt string) (string, error)

	// ModelID reports the configured model identifier.
	ModelID() string
}
