package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

const (
	MinDescriptionLength = 10
	MaxDescriptionLength = 5000
)

// ProjectInput is the submitted description plus optional structured hints.
// Immutable once accepted.
type ProjectInput struct {
	Description        string `json:"description"`
	CompanySize        string `json:"company_size,omitempty"`
	BudgetRange        string `json:"budget_range,omitempty"`
	TimelinePreference string `json:"timeline_preference,omitempty"`
	Industry           string `json:"industry,omitempty"`
}

func (p ProjectInput) Validate() error {
	n := utf8.RuneCountInString(p.Description)
	if n < MinDescriptionLength || n > MaxDescriptionLength {
		return WrapError(
			ErrInvalidInput,
			"validate project input",
			fmt.Errorf("description must be %d-%d characters, got %d", MinDescriptionLength, MaxDescriptionLength, n),
		)
	}
	return nil
}

// ContextHints returns the structured hints as the seed stage context.
func (p ProjectInput) ContextHints() map[string]any {
	hints := map[string]any{}
	if p.CompanySize != "" {
		hints["company_size"] = p.CompanySize
	}
	if p.BudgetRange != "" {
		hints["budget_range"] = p.BudgetRange
	}
	if p.TimelinePreference != "" {
		hints["timeline_preference"] = p.TimelinePreference
	}
	if p.Industry != "" {
		hints["industry"] = p.Industry
	}
	return hints
}

// StageResult is the outcome of one prompt/response exchange. Created once per
// stage invocation and never mutated afterwards; a failed structured parse
// yields a degraded result carrying the raw text instead of aborting.
type StageResult struct {
	AgentName      string
	Content        map[string]any
	ParseError     string
	RawResponse    string
	Confidence     float64
	ProcessingTime float64
}

func (r StageResult) Degraded() bool {
	return r.ParseError != ""
}

// AsMap is the serialized form threaded into later stages' context and stored
// in the final record.
func (r StageResult) AsMap() map[string]any {
	out := make(map[string]any, len(r.Content)+4)
	for k, v := range r.Content {
		out[k] = v
	}
	out["agent_name"] = r.AgentName
	if r.Degraded() {
		out["error"] = r.ParseError
		out["raw_response"] = r.RawResponse
	}
	out["confidence"] = r.Confidence
	out["processing_time"] = r.ProcessingTime
	return out
}

// Analysis is the top-level aggregate tracked through
// pending -> processing -> completed/failed.
type Analysis struct {
	ID                string         `json:"analysis_id"`
	Input             ProjectInput   `json:"input"`
	Status            AnalysisStatus `json:"status"`
	Result            map[string]any `json:"result,omitempty"`
	OverallConfidence float64        `json:"overall_confidence,omitempty"`
	Error             string         `json:"error,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
}
