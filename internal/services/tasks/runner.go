package tasks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

// Runner executes one generation task end to end: cache lookup,
// provider call, output validation, heuristic fallback. Provider errors
// are caught here and silently downgrade to heuristic output; a task
// only reports failure for a genuinely unregistered kind.
type Runner struct {
	contracts map[models.TaskKind]Contract
	provider  interfaces.CompletionProvider
	cache     interfaces.TaskCache
	offline   bool
	logger    arbor.ILogger
}

// NewRunner creates a task runner with the default contracts
// registered. Provider and cache may be nil; a nil provider behaves
// like offline mode.
func NewRunner(provider interfaces.CompletionProvider, taskCache interfaces.TaskCache, offline bool, logger arbor.ILogger) *Runner {
	r := &Runner{
		contracts: make(map[models.TaskKind]Contract),
		provider:  provider,
		cache:     taskCache,
		offline:   offline,
		logger:    logger,
	}
	for _, contract := range DefaultContracts() {
		r.Register(contract)
	}
	return r
}

// Register adds or replaces a task contract.
func (r *Runner) Register(contract Contract) {
	r.contracts[contract.Kind()] = contract
}

// Run executes one task against the record. The response always carries
// provider- or heuristic-sourced data with identical shape; FallbackUsed
// and CacheHit expose provenance so callers can render it without
// re-deriving.
func (r *Runner) Run(ctx context.Context, req *models.TaskRequest, record *models.ProductRecord) *models.TaskResponse {
	start := time.Now()

	contract, ok := r.contracts[req.Kind]
	if !ok {
		r.logger.Error().Str("kind", string(req.Kind)).Msg("Unregistered task kind requested")
		return &models.TaskResponse{
			Kind:    req.Kind,
			Success: false,
			Error:   interfaces.ErrUnknownTask.Error(),
			Elapsed: time.Since(start),
		}
	}

	input := contract.CacheInput(record)
	pageContext := record.SourceURL

	if r.cache != nil {
		if raw, hit := r.cache.Get(ctx, req.Kind, input, pageContext); hit {
			if data, err := contract.Decode(raw); err == nil {
				r.logger.Debug().Str("kind", string(req.Kind)).Msg("Task served from cache")
				return &models.TaskResponse{
					Kind:     req.Kind,
					Success:  true,
					Data:     data,
					CacheHit: true,
					Elapsed:  time.Since(start),
				}
			}
			r.logger.Warn().Str("kind", string(req.Kind)).Msg("Cached task value failed to decode, treating as miss")
		}
	}

	var data any
	fallbackUsed := false
	offline := req.Offline || r.offline

	if contract.ProviderBacked() {
		if !offline && r.provider != nil {
			data = r.tryProvider(ctx, contract, record)
		}
		if data == nil {
			data = contract.Heuristic(record)
			fallbackUsed = true
		}
	} else {
		data = contract.Heuristic(record)
	}

	// Every successful result is written to both tiers, heuristic
	// output included.
	if r.cache != nil {
		if raw, err := json.Marshal(data); err == nil {
			r.cache.Set(ctx, req.Kind, input, pageContext, raw)
		} else {
			r.logger.Warn().Err(err).Str("kind", string(req.Kind)).Msg("Failed to marshal task result for caching")
		}
	}

	return &models.TaskResponse{
		Kind:         req.Kind,
		Success:      true,
		Data:         data,
		FallbackUsed: fallbackUsed,
		Elapsed:      time.Since(start),
	}
}

// tryProvider runs the provider path: prompt, complete, parse, validate.
// Any failure returns nil and the caller degrades to the heuristic.
func (r *Runner) tryProvider(ctx context.Context, contract Contract, record *models.ProductRecord) any {
	prompt := contract.BuildPrompt(record)

	text, err := r.provider.Complete(ctx, prompt)
	if err != nil {
		r.logger.Debug().Err(err).Str("kind", string(contract.Kind())).Msg("Provider call failed, using heuristic")
		return nil
	}

	data, err := contract.Parse(text)
	if err != nil {
		r.logger.Debug().Err(err).Str("kind", string(contract.Kind())).Msg("Provider output unparseable, using heuristic")
		return nil
	}

	if err := contract.Validate(data); err != nil {
		r.logger.Debug().Err(err).Str("kind", string(contract.Kind())).Msg("Provider output failed validation, using heuristic")
		return nil
	}

	return data
}
