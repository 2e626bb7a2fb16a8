package models

import (
	"strings"
	"time"
)

// TaskKind identifies one of the fixed content-generation tasks.
type TaskKind string

const (
	TaskLongTail TaskKind = "generate.longtail"
	TaskMeta     TaskKind = "generate.meta"
	TaskBullets  TaskKind = "rewrite.bullets"
	TaskGaps     TaskKind = "detect.gaps"
)

// AllTaskKinds returns the fixed task set in execution order.
func AllTaskKinds() []TaskKind {
	return []TaskKind{TaskLongTail, TaskMeta, TaskBullets, TaskGaps}
}

// TaskRequest describes one generation task to run against a product record.
type TaskRequest struct {
	Kind    TaskKind `json:"kind"`
	Offline bool     `json:"offline,omitempty"`
}

// TaskResponse is the uniform result shape for every task, regardless of
// whether the data came from cache, a provider, or a heuristic generator.
type TaskResponse struct {
	Kind         TaskKind      `json:"kind"`
	Success      bool          `json:"success"`
	Data         any           `json:"data"`
	Elapsed      time.Duration `json:"elapsed"`
	FallbackUsed bool          `json:"fallback_used"`
	CacheHit     bool          `json:"cache_hit"`
	Error        string        `json:"error,omitempty"`
}

// LongTailSuggestion is one generated long-tail search phrase with a
// relevance score.
type LongTailSuggestion struct {
	Phrase string  `json:"phrase" validate:"required"`
	Score  float64 `json:"score" validate:"gte=0,lte=1"`
}

// LongTailResult is the output contract for the long-tail generation task.
type LongTailResult struct {
	Suggestions []LongTailSuggestion `json:"suggestions" validate:"required,min=3,max=8,dive"`
}

// MetaResult is the output contract for the meta generation task.
type MetaResult struct {
	MetaTitle       string `json:"metaTitle" validate:"required,max=60"`
	MetaDescription string `json:"metaDescription" validate:"required,max=160"`
}

// BulletsResult is the output contract for the bullet rewrite task.
type BulletsResult struct {
	Bullets []string `json:"bullets" validate:"required,min=1,max=10,dive,required,max=200"`
}

// GapClassification buckets a gap score into a severity band.
type GapClassification string

const (
	GapNone     GapClassification = "none"
	GapMild     GapClassification = "mild"
	GapModerate GapClassification = "moderate"
	GapSevere   GapClassification = "severe"
)

// Gap is one missing expected attribute with a templated suggestion.
type Gap struct {
	Attribute  string  `json:"attribute" validate:"required"`
	Severity   float64 `json:"severity" validate:"gt=0"`
	Suggestion string  `json:"suggestion" validate:"required"`
}

// GapResult is the output contract for the attribute-gap detection task.
type GapResult struct {
	Gaps           []Gap             `json:"gaps"`
	Score          float64           `json:"score" validate:"gte=0"`
	Classification GapClassification `json:"classification" validate:"required,oneof=none mild moderate severe"`
}

// ClassifyGapScore maps a gap score onto its severity band:
// none at 0, mild in (0,4], moderate in (4,8], severe above 8.
func ClassifyGapScore(score float64) GapClassification {
	switch {
	case score <= 0:
		return GapNone
	case score <= 4:
		return GapMild
	case score <= 8:
		return GapModerate
	default:
		return GapSevere
	}
}

// OptimizationResult aggregates one analysis pass over a product record.
// A pass may be refreshed (new timestamp, same record) without re-extracting.
type OptimizationResult struct {
	Record      *ProductRecord  `json:"record"`
	LongTail    *LongTailResult `json:"longtail,omitempty"`
	Meta        *MetaResult     `json:"meta,omitempty"`
	Bullets     *BulletsResult  `json:"bullets,omitempty"`
	Gaps        *GapResult      `json:"gaps,omitempty"`
	Responses   []*TaskResponse `json:"responses,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// NormalizeAttributeKey lowercases an attribute key and collapses
// whitespace runs to single underscores so spec keys compare cleanly
// against expected-attribute lists.
func NormalizeAttributeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Join(strings.Fields(key), "_")
}
