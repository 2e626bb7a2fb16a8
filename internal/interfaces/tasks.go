package interfaces

import (
	"errors"

	"github.com/ternarybob/merx/internal/models"
)

// ErrUnknownTask indicates an unregistered task kind. This is the only
// condition that produces a failed task response; it is a programming
// error, not a runtime condition.
var ErrUnknownTask = errors.New("unknown task kind")

// ProgressPhase marks the lifecycle stage of one task during a
// sequential optimization pass.
type ProgressPhase string

const (
	ProgressStart ProgressPhase = "start"
	ProgressDone  ProgressPhase = "done"
	ProgressError ProgressPhase = "error"
)

// ProgressEvent is emitted per task in sequential-with-progress mode.
type ProgressEvent struct {
	Kind  models.TaskKind `json:"kind"`
	Phase ProgressPhase   `json:"phase"`
	Error string          `json:"error,omitempty"`
}

// ProgressFunc receives progress events. Implementations must be fast;
// the orchestrator calls them inline between tasks.
type ProgressFunc func(event ProgressEvent)
