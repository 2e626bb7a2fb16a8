package interfaces

import (
	"context"
)

// CompletionProvider is the abstract generation-provider transport the
// task runner depends on. Implementations can fail, time out, or return
// unparseable content; all three degrade to the heuristic path at the
// task level.
type CompletionProvider interface {
	// Complete sends a prompt to the provider and returns its raw text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name identifies the provider for telemetry.
	Name() string

	// Close releases provider clients.
	Close() error
}
