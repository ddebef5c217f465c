package ports

import (
	"context"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

// AnalysisRepository persists analysis records. One writer per id; a
// single-row update per status transition.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *domain.Analysis) error
	GetByID(ctx context.Context, id string) (*domain.Analysis, error)
	UpdateStatus(ctx context.Context, id string, status domain.AnalysisStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, result map[string]any, overallConfidence float64) error
}

// ModelInvoker performs one synchronous prompt/response exchange with the
// language model. Returns the raw response text or an error.
type ModelInvoker interface {
	Invoke(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// MessageQueue dispatches submitted analysis ids to background workers.
type MessageQueue interface {
	PublishAnalysisSubmitted(ctx context.Context, analysisID string) error
	SubscribeAnalysisSubmitted(ctx context.Context, handler func(context.Context, string) error) error
}

// HistoricalData is the read-only lookup surface over the reference snapshot.
// Every method returns empty/neutral values when no data is loaded.
type HistoricalData interface {
	SimilarProjects(projectType string, complexityScore int, techStack []string) []domain.SimilarProject
	CostEstimates(projectType string, complexityScore int) domain.CostStats
	TeamPerformanceMetrics(techStack []string) domain.TeamMetrics
	RiskIndicators(projectType string, complexityScore int) []domain.RiskIndicator
	TechnologyUsageStats() domain.TechUsageStats
	AvailableEmployees() []domain.Employee
}

// EmployeeMatcher ranks roster employees against required roles. Matching is
// best-effort enrichment; implementations return the composition unchanged
// when no roster is available.
type EmployeeMatcher interface {
	Match(team []domain.RoleRequirement, requiredSkills []string) ([]domain.RoleRequirement, error)
}

// ReferenceLoader reads the reference data snapshot at startup.
type ReferenceLoader interface {
	Load(ctx context.Context) (domain.ReferenceSnapshot, error)
}
