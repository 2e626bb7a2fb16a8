package interfaces

import (
	"context"

	"github.com/ternarybob/merx/internal/models"
)

// TaskCache is the two-tier cache consulted before any provider call.
// Values are the JSON encoding of a task's typed output.
type TaskCache interface {
	// Get returns the cached value for (kind, input, pageContext) and
	// whether it was found fresh in either tier.
	Get(ctx context.Context, kind models.TaskKind, input, pageContext string) ([]byte, bool)

	// Set writes a value to the in-memory tier synchronously and to the
	// durable tier best-effort; it never blocks on durable persistence.
	Set(ctx context.Context, kind models.TaskKind, input, pageContext string, value []byte)
}
