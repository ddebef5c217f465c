package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/projectscope/estimation-service/internal/core/domain"
	"github.com/projectscope/estimation-service/internal/core/ports"
)

// budgetExhaustedMessage is stored verbatim on analyses that fail because the
// model provider ran out of quota, so the API surfaces a retryable condition
// rather than a generic failure.
const budgetExhaustedMessage = "The analysis model has reached its request quota. Please try again in a few minutes."

const defaultComplexityScore = 5

// StageRunner executes a single pipeline stage. StageProcessor is the
// production implementation.
type StageRunner interface {
	Run(ctx context.Context, stage Stage, description string, stageCtx map[string]any) (*domain.StageResult, error)
}

// PipelineMetrics receives per-stage and per-analysis observations.
type PipelineMetrics interface {
	ObserveStage(stage string, seconds float64)
	AnalysisFinished(status string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, float64) {}
func (noopMetrics) AnalysisFinished(string)      {}

// AnalyzeProjectUseCase drives the four-stage analysis pipeline for one
// submitted analysis: intake, technical, estimation, summary, with employee
// matching folded in between estimation and summary.
type AnalyzeProjectUseCase struct {
	repo    ports.AnalysisRepository
	runner  StageRunner
	history ports.HistoricalData
	matcher ports.EmployeeMatcher
	metrics PipelineMetrics
}

func NewAnalyzeProjectUseCase(
	repo ports.AnalysisRepository,
	runner StageRunner,
	history ports.HistoricalData,
	matcher ports.EmployeeMatcher,
	metrics PipelineMetrics,
) *AnalyzeProjectUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &AnalyzeProjectUseCase{
		repo:    repo,
		runner:  runner,
		history: history,
		matcher: matcher,
		metrics: metrics,
	}
}

// ProcessByID loads the analysis, runs the pipeline, and persists either the
// completed result or a failed status. The returned error reflects pipeline
// failure after the status has been recorded.
func (uc *AnalyzeProjectUseCase) ProcessByID(ctx context.Context, id string) error {
	analysis, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("process analysis %s: %w", id, err)
	}

	if err := uc.repo.UpdateStatus(ctx, id, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("mark analysis processing: %w", err)
	}

	result, overall, runErr := uc.runPipeline(ctx, analysis.Input)
	if runErr != nil {
		uc.metrics.AnalysisFinished(string(domain.StatusFailed))
		message := failureMessage(runErr)
		slog.Error("analysis_pipeline_failed", "analysis_id", id, "error", runErr.Error())
		if err := uc.repo.UpdateStatus(ctx, id, domain.StatusFailed, message); err != nil {
			return fmt.Errorf("mark analysis failed: %w", err)
		}
		return runErr
	}

	if err := uc.repo.SaveResult(ctx, id, result, overall); err != nil {
		return fmt.Errorf("save analysis result: %w", err)
	}
	uc.metrics.AnalysisFinished(string(domain.StatusCompleted))
	slog.Info("analysis_completed", "analysis_id", id, "overall_confidence", overall)
	return nil
}

func failureMessage(err error) string {
	if errors.Is(err, domain.ErrModelBudget) {
		return budgetExhaustedMessage
	}
	return "Analysis failed: " + err.Error()
}

// runPipeline executes all four stages sequentially, accumulating each
// stage's output into the context the next stage receives.
func (uc *AnalyzeProjectUseCase) runPipeline(ctx context.Context, input domain.ProjectInput) (map[string]any, float64, error) {
	stageCtx := input.ContextHints()
	description := input.Description

	intake, err := uc.runStage(ctx, StageIntake, description, stageCtx)
	if err != nil {
		return nil, 0, err
	}
	stageCtx[ContextKeyIntake] = intake.AsMap()

	technical, err := uc.runStage(ctx, StageTechnical, description, stageCtx)
	if err != nil {
		return nil, 0, err
	}
	stageCtx[ContextKeyTechnical] = technical.AsMap()

	historical := uc.historicalContext(intake, technical)
	stageCtx[ContextKeyHistorical] = historical

	estimation, err := uc.runStage(ctx, StageEstimation, description, stageCtx)
	if err != nil {
		return nil, 0, err
	}
	estimationMap := estimation.AsMap()
	if !estimation.Degraded() {
		estimationMap["historical_insights"] = historical
	}

	// Matching errors never fail the analysis; the team composition simply
	// stays without recommendations.
	uc.enrichTeam(estimationMap, technical)
	stageCtx[ContextKeyEstimation] = estimationMap

	summary, err := uc.runStage(ctx, StageSummary, description, stageCtx)
	if err != nil {
		return nil, 0, err
	}
	summaryMap := summary.AsMap()

	overall := OverallConfidence([]float64{
		intake.Confidence,
		technical.Confidence,
		estimation.Confidence,
		summary.Confidence,
	})

	result := map[string]any{
		"input_description":   description,
		"intake_analysis":     stageCtx[ContextKeyIntake],
		"technical_analysis":  stageCtx[ContextKeyTechnical],
		"estimation_analysis": estimationMap,
		"summary":             summaryMap,
		"overall_confidence":  overall,

		// Flat fields for report rendering and downstream consumers.
		"executive_summary":      executiveOverview(summaryMap),
		"tech_stack":             mapField(technical.Content, "recommended_tech_stack"),
		"team_composition":       anyField(estimationMap, "team_composition"),
		"timeline_breakdown":     mapField(estimation.Content, "timeline_breakdown"),
		"cost_estimate":          mapField(estimation.Content, "cost_breakdown"),
		"risks_and_dependencies": anyField(summary.Content, "major_risks"),
	}
	return result, overall, nil
}

func (uc *AnalyzeProjectUseCase) runStage(ctx context.Context, stage Stage, description string, stageCtx map[string]any) (*domain.StageResult, error) {
	started := time.Now()
	slog.Info("running_pipeline_stage", "stage", string(stage))
	result, err := uc.runner.Run(ctx, stage, description, stageCtx)
	uc.metrics.ObserveStage(string(stage), time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}
	if result.Degraded() {
		slog.Warn("stage_result_degraded", "stage", string(stage))
	}
	return result, nil
}

// historicalContext assembles the calibration block handed to the estimation
// stage.
func (uc *AnalyzeProjectUseCase) historicalContext(intake, technical *domain.StageResult) map[string]any {
	projectType := stringField(intake.Content, "project_type", "web_app")
	complexity := complexityScore(intake.Content)
	techStack := extractTechStack(technical.Content)

	similar := uc.history.SimilarProjects(projectType, complexity, techStack)
	costs := uc.history.CostEstimates(projectType, complexity)
	teamMetrics := uc.history.TeamPerformanceMetrics(techStack)
	risks := uc.history.RiskIndicators(projectType, complexity)
	techStats := uc.history.TechnologyUsageStats()
	available := uc.history.AvailableEmployees()

	return map[string]any{
		"similar_projects":         similar,
		"historical_cost_data":     costs,
		"team_performance_metrics": teamMetrics,
		"risk_indicators":          risks,
		"technology_usage_stats":   techStats,
		"available_employee_rates": ratesBySeniority(available),
		"data_confidence":          dataConfidence(len(similar), costs.SampleSize),
	}
}

// ratesBySeniority reshapes the roster into rate listings keyed by seniority,
// the form the estimation prompt expects.
func ratesBySeniority(employees []domain.Employee) map[string][]map[string]any {
	rates := make(map[string][]map[string]any)
	for _, emp := range employees {
		seniority := emp.SeniorityLevel
		if seniority == "" {
			seniority = "Mid"
		}
		rates[seniority] = append(rates[seniority], map[string]any{
			"name":         emp.Name,
			"title":        emp.Title,
			"rate":         emp.HourlyRate,
			"availability": emp.AvailabilityPercentage,
		})
	}
	return rates
}

// dataConfidence grows from a 0.5 baseline with the amount of comparable
// historical evidence, capped at 1.0.
func dataConfidence(similarCount, sampleSize int) float64 {
	confidence := 0.5
	if similarCount > 0 {
		confidence += math.Min(float64(similarCount)*0.1, 0.3)
	}
	if sampleSize > 0 {
		confidence += math.Min(float64(sampleSize)*0.05, 0.2)
	}
	return math.Min(confidence, 1.0)
}

// complexityScore averages the intake complexity indicators onto a 1-10
// scale. Indicators that are not an exact low/medium/high value are skipped.
func complexityScore(intake map[string]any) int {
	indicators, ok := intake["complexity_indicators"].(map[string]any)
	if !ok {
		return defaultComplexityScore
	}
	var scores []int
	keys := make([]string, 0, len(indicators))
	for k := range indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch indicators[k] {
		case "low":
			scores = append(scores, 2)
		case "medium":
			scores = append(scores, 5)
		case "high":
			scores = append(scores, 8)
		}
	}
	if len(scores) == 0 {
		return defaultComplexityScore
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return sum / len(scores)
}

// extractTechStack pulls the primary technology from each category of the
// recommended stack.
func extractTechStack(technical map[string]any) []string {
	stack, ok := technical["recommended_tech_stack"].(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(stack))
	for k := range stack {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var names []string
	for _, k := range keys {
		switch details := stack[k].(type) {
		case map[string]any:
			if primary, ok := details["primary"].(string); ok {
				names = append(names, primary)
			}
		case string:
			names = append(names, details)
		}
	}
	return names
}

// requiredSkills collects the concrete technologies and integrations a
// project needs, used to score employees against roles.
func requiredSkills(technical map[string]any) []string {
	var skills []string

	if stack, ok := technical["recommended_tech_stack"].(map[string]any); ok {
		keys := make([]string, 0, len(stack))
		for k := range stack {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			switch details := stack[k].(type) {
			case map[string]any:
				for _, field := range []string{"primary", "ui_framework", "state_management"} {
					if v, ok := details[field].(string); ok {
						skills = append(skills, v)
					}
				}
			case string:
				skills = append(skills, details)
			}
		}
	}

	if integrations, ok := technical["integration_requirements"].(map[string]any); ok {
		if apis, ok := integrations["third_party_apis"].([]any); ok {
			for _, api := range apis {
				if s, ok := api.(string); ok {
					skills = append(skills, s)
				}
			}
		}
	}
	return skills
}

// enrichTeam attaches recommended employees to each role of the estimation's
// team composition. Any failure here leaves the composition untouched.
func (uc *AnalyzeProjectUseCase) enrichTeam(estimation map[string]any, technical *domain.StageResult) {
	if uc.matcher == nil {
		return
	}
	rawTeam, ok := estimation["team_composition"]
	if !ok {
		slog.Warn("no_team_composition_in_estimation")
		return
	}

	team, err := decodeTeam(rawTeam)
	if err != nil {
		slog.Error("employee_matching_skipped", "error", err.Error())
		return
	}
	if len(team) == 0 {
		slog.Warn("no_team_composition_in_estimation")
		return
	}

	enriched, err := uc.matcher.Match(team, requiredSkills(technical.Content))
	if err != nil {
		slog.Error("employee_matching_failed", "error", err.Error())
		return
	}
	estimation["team_composition"] = enriched
}

// decodeTeam converts the loosely typed model output into role requirements
// via a JSON round trip, tolerating missing or extra fields.
func decodeTeam(raw any) ([]domain.RoleRequirement, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode team composition: %w", err)
	}
	var team []domain.RoleRequirement
	if err := json.Unmarshal(encoded, &team); err != nil {
		return nil, fmt.Errorf("decode team composition: %w", err)
	}
	return team, nil
}

// OverallConfidence averages per-stage confidences with heavier weight on
// the later stages.
func OverallConfidence(confidences []float64) float64 {
	if len(confidences) == 0 {
		return 0.5
	}
	weights := []float64{1, 1.2, 1.5, 1.3}
	if len(confidences) < len(weights) {
		weights = weights[:len(confidences)]
	}
	var weightedSum, totalWeight float64
	for i, w := range weights {
		weightedSum += confidences[i] * w
		totalWeight += w
	}
	return math.Min(weightedSum/totalWeight, 1.0)
}

func stringField(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func mapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return map[string]any{}
}

func anyField(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return []any{}
}

func executiveOverview(summary map[string]any) string {
	if exec, ok := summary["executive_summary"].(map[string]any); ok {
		if overview, ok := exec["project_overview"].(string); ok {
			return overview
		}
	}
	return ""
}
