// Package optimizer fans the fixed task set out against one product
// record and aggregates the responses into an optimization result.
package optimizer

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
	"github.com/ternarybob/merx/internal/services/tasks"
)

// Service orchestrates the fixed task set. Two equivalent execution
// modes: concurrent (all tasks started together) for lowest latency,
// and sequential-with-progress for incremental rendering. Both produce
// identical aggregates for identical inputs; sequencing is a
// presentation concern, not a behavioral fork.
type Service struct {
	runner *tasks.Runner
	logger arbor.ILogger
}

// NewService creates an optimizer around a task runner.
func NewService(runner *tasks.Runner, logger arbor.ILogger) *Service {
	return &Service{
		runner: runner,
		logger: logger,
	}
}

// Optimize runs every task kind against the record. When onProgress is
// nil all tasks run concurrently; otherwise they run task by task with
// start/done/error events. Responses are returned in fixed task order
// either way.
func (s *Service) Optimize(ctx context.Context, record *models.ProductRecord, offline bool, onProgress interfaces.ProgressFunc) []*models.TaskResponse {
	kinds := models.AllTaskKinds()

	if onProgress == nil {
		return s.runConcurrent(ctx, record, offline, kinds)
	}
	return s.runSequential(ctx, record, offline, kinds, onProgress)
}

// runConcurrent starts all tasks together and collects results once all
// finish. Tasks are mutually independent and read the same immutable
// record, so no coordination beyond the wait is needed.
func (s *Service) runConcurrent(ctx context.Context, record *models.ProductRecord, offline bool, kinds []models.TaskKind) []*models.TaskResponse {
	responses := make([]*models.TaskResponse, len(kinds))

	var wg sync.WaitGroup
	for i, kind := range kinds {
		wg.Add(1)
		go func(i int, kind models.TaskKind) {
			defer wg.Done()
			defer common.RecoverGoroutine(s.logger, "task:"+string(kind))
			responses[i] = s.runner.Run(ctx, &models.TaskRequest{Kind: kind, Offline: offline}, record)
		}(i, kind)
	}
	wg.Wait()

	return responses
}

func (s *Service) runSequential(ctx context.Context, record *models.ProductRecord, offline bool, kinds []models.TaskKind, onProgress interfaces.ProgressFunc) []*models.TaskResponse {
	responses := make([]*models.TaskResponse, 0, len(kinds))

	for _, kind := range kinds {
		onProgress(interfaces.ProgressEvent{Kind: kind, Phase: interfaces.ProgressStart})

		response := s.runner.Run(ctx, &models.TaskRequest{Kind: kind, Offline: offline}, record)
		responses = append(responses, response)

		if response.Success {
			onProgress(interfaces.ProgressEvent{Kind: kind, Phase: interfaces.ProgressDone})
		} else {
			onProgress(interfaces.ProgressEvent{Kind: kind, Phase: interfaces.ProgressError, Error: response.Error})
		}
	}

	return responses
}

// Aggregate assembles task responses into one optimization result.
func (s *Service) Aggregate(record *models.ProductRecord, responses []*models.TaskResponse) *models.OptimizationResult {
	result := &models.OptimizationResult{
		Record:      record,
		Responses:   responses,
		GeneratedAt: time.Now().UTC(),
	}

	for _, response := range responses {
		if response == nil || !response.Success {
			continue
		}
		switch data := response.Data.(type) {
		case *models.LongTailResult:
			result.LongTail = data
		case *models.MetaResult:
			result.Meta = data
		case *models.BulletsResult:
			result.Bullets = data
		case *models.GapResult:
			result.Gaps = data
		}
	}

	return result
}

// Refresh re-runs the task set against the result's existing record
// without re-extracting, producing a new aggregate with a fresh
// timestamp.
func (s *Service) Refresh(ctx context.Context, previous *models.OptimizationResult, offline bool, onProgress interfaces.ProgressFunc) *models.OptimizationResult {
	responses := s.Optimize(ctx, previous.Record, offline, onProgress)
	return s.Aggregate(previous.Record, responses)
}
