// Package tasks executes the fixed set of content-generation tasks
// against a product record: cache lookup, provider call, output
// validation, and a deterministic heuristic fallback that satisfies the
// same output contract as the provider path.
package tasks

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/merx/internal/models"
)

// validate checks the structural shape of task output, both
// provider-sourced and heuristic-sourced, against the models' tags.
var validate = validator.New()

// Contract defines one task kind end to end. The heuristic generator is
// an always-available alternate implementation of the task, not merely
// an error path: its output must satisfy Validate exactly like provider
// output, so downstream consumers never special-case the source.
type Contract interface {
	// Kind returns the task identifier.
	Kind() models.TaskKind

	// ProviderBacked reports whether the task ever calls a provider.
	// Gap detection is a pure heuristic by design and returns false.
	ProviderBacked() bool

	// CacheInput returns the normalized input string that, together
	// with the task kind and page context, fingerprints the cache key.
	CacheInput(record *models.ProductRecord) string

	// BuildPrompt constructs the provider prompt, truncating any
	// oversized field first.
	BuildPrompt(record *models.ProductRecord) string

	// Parse converts raw provider text into the task's typed output.
	Parse(raw string) (any, error)

	// Validate checks the structural shape of parsed output.
	Validate(data any) error

	// Heuristic deterministically generates output without network
	// access.
	Heuristic(record *models.ProductRecord) any

	// Decode converts a cached JSON value back into typed output.
	Decode(cached []byte) (any, error)
}

// DefaultContracts returns the fixed task set.
func DefaultContracts() []Contract {
	return []Contract{
		&longTailContract{},
		&metaContract{},
		&bulletsContract{},
		&gapsContract{},
	}
}

// extractJSON pulls the first JSON object or array out of provider
// text, tolerating markdown code fences and surrounding prose.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)

	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return trimmed
	}

	closer := byte('}')
	if trimmed[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(trimmed, closer)
	if end <= start {
		return trimmed
	}
	return trimmed[start : end+1]
}
