// Package pipeline reconciles multiple independent extractors into one
// product record with per-field confidence and provenance.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

// Options tunes pipeline behavior. Zero values fall back to defaults
// (5s extractor timeout, no confidence floor, run all extractors).
type Options struct {
	ExtractorTimeout  time.Duration
	MinConfidence     float64
	StopAfterFirstHit bool
	MaxExtractors     int
	KeepResults       bool
}

// Pipeline runs registered extractors strictly in priority order and
// merges their results field by field, highest confidence winning.
// Sequential execution keeps the merge deterministic without locks.
type Pipeline struct {
	extractors []interfaces.Extractor
	opts       Options
	logger     arbor.ILogger
}

// New creates a pipeline with the given options.
func New(opts Options, logger arbor.ILogger) *Pipeline {
	if opts.ExtractorTimeout <= 0 {
		opts.ExtractorTimeout = 5 * time.Second
	}
	return &Pipeline{
		opts:   opts,
		logger: logger,
	}
}

// Register adds an extractor, keeping the set ordered by descending
// priority so structured sources always run before heuristic ones.
func (p *Pipeline) Register(extractor interfaces.Extractor) {
	p.extractors = append(p.extractors, extractor)
	sort.SliceStable(p.extractors, func(i, j int) bool {
		return p.extractors[i].Priority() > p.extractors[j].Priority()
	})
}

// Extractors returns the registered extractors in execution order.
func (p *Pipeline) Extractors() []interfaces.Extractor {
	return p.extractors
}

// Extract runs every runnable extractor under a bounded timeout, filters
// low-confidence results and merges the rest into one record with
// traceable provenance.
//
// If no extractor contributes any field, the merged record is empty and
// overall confidence is 0; callers must treat this as "not a product
// page" and never retry extraction.
func (p *Pipeline) Extract(ctx context.Context, doc *goquery.Document, platformHint, sourceURL string) *models.PipelineResult {
	start := time.Now()

	var results []*models.ExtractionResult
	ran := 0
	for _, extractor := range p.extractors {
		if p.opts.MaxExtractors > 0 && ran >= p.opts.MaxExtractors {
			break
		}
		if !extractor.CanRun(doc) {
			p.logger.Debug().Str("extractor", extractor.Name()).Msg("Extractor skipped, no signal")
			continue
		}

		ran++
		result := p.runExtractor(ctx, extractor, doc)
		if result == nil {
			continue
		}
		if result.Confidence < p.opts.MinConfidence {
			p.logger.Debug().
				Str("extractor", extractor.Name()).
				Float64("confidence", result.Confidence).
				Float64("min_confidence", p.opts.MinConfidence).
				Msg("Extractor result below confidence floor, discarded")
			continue
		}

		p.logger.Debug().
			Str("extractor", extractor.Name()).
			Int("fields", len(result.Fields)).
			Float64("confidence", result.Confidence).
			Msg("Extractor completed")

		results = append(results, result)
		if p.opts.StopAfterFirstHit && !result.Empty() {
			break
		}
	}

	merged := p.merge(results)
	merged.ID = uuid.New().String()
	merged.Elapsed = time.Since(start)
	if p.opts.KeepResults {
		merged.Results = results
	}

	if merged.IsProduct() {
		merged.Record.Platform = platformHint
		merged.Record.SourceURL = sourceURL
		merged.Record.CapturedAt = time.Now().UTC()
	}

	p.logger.Info().
		Str("pipeline_id", merged.ID).
		Int("extractors_run", ran).
		Int("fields_merged", len(merged.FieldSources)).
		Float64("confidence", merged.Confidence).
		Dur("elapsed", merged.Elapsed).
		Msg("Extraction pipeline completed")

	return merged
}

// runExtractor executes one extractor under the configured timeout. A
// timed-out extractor may keep running in the background; its result is
// discarded. Panics are contained so one failing extractor never aborts
// the run.
func (p *Pipeline) runExtractor(ctx context.Context, extractor interfaces.Extractor, doc *goquery.Document) *models.ExtractionResult {
	runCtx, cancel := context.WithTimeout(ctx, p.opts.ExtractorTimeout)
	defer cancel()

	resultCh := make(chan *models.ExtractionResult, 1)
	go func() {
		var result *models.ExtractionResult
		func() {
			defer common.RecoverGoroutine(p.logger, "extractor:"+extractor.Name())
			result = extractor.Run(runCtx, doc)
		}()
		resultCh <- result
	}()

	select {
	case result := <-resultCh:
		return result
	case <-runCtx.Done():
		p.logger.Warn().
			Str("extractor", extractor.Name()).
			Dur("timeout", p.opts.ExtractorTimeout).
			Msg("Extractor timed out, continuing without it")
		return nil
	}
}

// merge adopts each field from the highest-confidence result that
// carries it. A value is replaced only when the producing extractor's
// confidence strictly exceeds the confidence already recorded for that
// field, so the fixed priority order yields deterministic provenance.
func (p *Pipeline) merge(results []*models.ExtractionResult) *models.PipelineResult {
	record := &models.ProductRecord{}
	fieldConfidence := make(map[string]float64)
	fieldSources := make(map[string]string)
	contributed := make(map[string]int)

	for _, result := range results {
		if result.Empty() {
			continue
		}
		for _, field := range result.Fields {
			if !result.Record.HasField(field) {
				continue
			}
			if result.Confidence > fieldConfidence[field] {
				if prev, taken := fieldSources[field]; taken {
					contributed[prev]--
				}
				record.AdoptField(field, result.Record)
				fieldConfidence[field] = result.Confidence
				fieldSources[field] = result.Extractor
				contributed[result.Extractor]++
			}
		}
	}

	// Overall confidence is weighted by field contribution: an extractor
	// supplying more fields influences the aggregate more than one
	// supplying a single field.
	var weightedSum, totalFields float64
	for _, result := range results {
		count := contributed[result.Extractor]
		if count <= 0 {
			continue
		}
		weightedSum += result.Confidence * float64(count)
		totalFields += float64(count)
	}

	confidence := 0.0
	if totalFields > 0 {
		confidence = weightedSum / totalFields
	}

	return &models.PipelineResult{
		Record:          record,
		Confidence:      confidence,
		FieldConfidence: fieldConfidence,
		FieldSources:    fieldSources,
	}
}
