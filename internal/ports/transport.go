package ports

// Transport accepts analysis requests over some protocol (HTTP, SMTP)
// and feeds them into the triage pipeline.
type Transport interface {
	// Start begins serving requests; it must not block.
	Start() error

	// Stop shuts the transport down.
	Stop() error
}
