// Package ai defines the completion gateway the chat engine talks to and
// its Gemini-backed implementation. The gateway is treated as an opaque,
// fallible, non-idempotent collaborator: callers decide whether a failure
// is worth retrying.
package ai

import "context"

// FileRef names a previously uploaded file the model may be asked about.
// Path is storage-relative, already normalized by the caller.
type FileRef struct {
	Name string
	Path string
}

// Gateway is the text-completion contract consumed by the chat orchestrator.
// Implementations must honor the context for cancellation and apply their
// own call timeout.
type Gateway interface {
	// Complete sends the composed prompt (plus file references) to the model
	// and returns the raw reply text. Failures are returned as *GatewayError.
	Complete(ctx context.Context, prompt string, files []FileRef) (string, error)
}

// GatewayError wraps any network, quota, or model failure from the
// completion service. The chat engine never retries these itself.
type GatewayError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Err == nil {
		return "ai gateway: " + e.Op
	}
	return "ai gateway: " + e.Op + ": " + e.Err.Error()
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *GatewayError) Unwrap() error { return e.Err }
