package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/projectscope/estimation-service/internal/core/domain"
	"github.com/projectscope/estimation-service/internal/core/ports"
)

// StageProcessor runs one pipeline stage against the language model and
// normalizes the raw completion into a StageResult.
type StageProcessor struct {
	model   ports.ModelInvoker
	timeout time.Duration
}

func NewStageProcessor(model ports.ModelInvoker, timeout time.Duration) *StageProcessor {
	return &StageProcessor{
		model:   model,
		timeout: timeout,
	}
}

// Run invokes the model for the given stage and parses its response.
// A malformed completion degrades into a low-confidence result instead of
// failing; model budget exhaustion surfaces as domain.ErrModelBudget so the
// pipeline can report it verbatim.
func (p *StageProcessor) Run(ctx context.Context, stage Stage, description string, stageCtx map[string]any) (*domain.StageResult, error) {
	started := time.Now()

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	raw, err := p.model.Invoke(callCtx, stage.SystemPrompt(), stage.UserPrompt(description, stageCtx))
	if err != nil {
		if isBudgetExhausted(err) {
			return nil, domain.WrapError(domain.ErrModelBudget, "stage "+string(stage), err)
		}
		return nil, domain.WrapError(domain.ErrTemporary, "stage "+string(stage), err)
	}

	elapsed := time.Since(started).Seconds()
	result := &domain.StageResult{
		AgentName:      stage.AgentName(),
		ProcessingTime: math.Round(elapsed*100) / 100,
	}

	cleaned := stripFences(raw)
	var content map[string]any
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		slog.Warn("unparseable_model_response",
			"stage", string(stage),
			"error", err.Error())
		result.ParseError = "Failed to parse agent response"
		result.RawResponse = cleaned
		result.Confidence = 0.3
		result.Content = map[string]any{}
		return result, nil
	}

	result.Content = content
	result.Confidence = heuristicConfidence(result)
	return result, nil
}

// isBudgetExhausted spots provider quota and rate-limit failures by message,
// which is the only signal some gateways expose.
func isBudgetExhausted(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}

// stripFences removes a surrounding markdown code fence, with or without a
// json language tag, leaving bare JSON intact.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// heuristicConfidence scores a parsed stage result by response length and the
// presence of concreteness and risk-awareness markers.
func heuristicConfidence(result *domain.StageResult) float64 {
	snapshot := make(map[string]any, len(result.Content)+1)
	for k, v := range result.Content {
		snapshot[k] = v
	}
	snapshot["agent_name"] = result.AgentName
	serialized, err := json.Marshal(snapshot)
	if err != nil {
		return 0.5
	}
	text := strings.ToLower(string(serialized))

	lengthScore := float64(len(strings.Fields(text))) / 100.0
	if lengthScore > 1.0 {
		lengthScore = 1.0
	}

	specificityScore := 0.6
	if strings.Contains(text, "specific") {
		specificityScore = 0.8
	}

	riskScore := 0.7
	if strings.Contains(text, "risk") {
		riskScore = 0.9
	}

	return (lengthScore + specificityScore + riskScore) / 3.0
}
