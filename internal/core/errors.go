package core

import "errors"

var (
	// ErrModelCommunication indicates the model service was unreachable,
	// timed out or returned no readable text.
	ErrModelCommunication = errors.New("model service returned no readable output")

	// ErrSchemaParse indicates the model returned text without a parsable
	// JSON object.
	ErrSchemaParse = errors.New("model output contains no valid JSON object")
)
