package importers

import "github.com/mrlokans/pocket-migrate/internal/entities"

// Stage is a step of an import run.
type Stage string

const (
	StageInit            Stage = "init"
	StageConnectionCheck Stage = "connection_check"
	StageLoad            Stage = "load"
	StageConvert         Stage = "convert"
	StageConfirm         Stage = "confirm"
	StageBatchSend       Stage = "batch_send"
	StageReport          Stage = "report"
)

// Failure is a link that was not created, even after individual fallback.
type Failure struct {
	Index   int // 1-based position in the loaded file
	LinkID  string
	URL     string
	Message string
}

// Sample pairs a source link with its converted row for operator review.
type Sample struct {
	Source entities.PocketLink
	Link   entities.Link
}

// Preview is shown to the operator before anything is written.
type Preview struct {
	Total              int
	TimestampFallbacks int
	Samples            []Sample
}

// Result accumulates everything that happened during a run.
type Result struct {
	SourceFile         string
	Stage              Stage // Last stage entered
	Cancelled          bool
	Loaded             int
	TimestampFallbacks int
	Batches            int
	Attempted          int
	Succeeded          int
	Failed             int

	// Errors holds exactly one message per failed link.
	Errors []string
	// BatchFailures holds one message per batch that fell back to individual sends.
	BatchFailures []string
	Failures      []Failure
}

// SuccessRate is the percentage of loaded links that were created.
func (r Result) SuccessRate() float64 {
	if r.Loaded == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Loaded) * 100
}

// ErrorSummary returns at most limit messages and how many were left out.
func (r Result) ErrorSummary(limit int) ([]string, int) {
	if limit < 0 || len(r.Errors) <= limit {
		return r.Errors, 0
	}
	return r.Errors[:limit], len(r.Errors) - limit
}
