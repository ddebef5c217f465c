// Package history answers calibration queries over an immutable snapshot of
// past projects and the employee roster. The index is built once at startup
// and is safe for concurrent readers.
package history

import (
	"fmt"
	"sort"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

const (
	// Tunable: minimum tech-stack overlap for a project to count as similar.
	similarityThreshold = 0.2
	// Tunable: complexity window around the target score.
	complexityWindow = 2

	maxSimilarProjects = 5
	maxRiskIndicators  = 5
)

type Index struct {
	projects  []domain.HistoricalProject
	employees []domain.Employee
}

func NewIndex(snapshot domain.ReferenceSnapshot) *Index {
	return &Index{
		projects:  snapshot.Projects,
		employees: snapshot.Employees,
	}
}

// SimilarProjects returns up to five completed projects of the same type
// within the complexity window, ranked by Jaccard similarity of technology
// names and filtered to similarity above the threshold.
func (idx *Index) SimilarProjects(projectType string, complexityScore int, techStack []string) []domain.SimilarProject {
	var results []domain.SimilarProject
	for _, p := range idx.projects {
		if !idx.comparable(p, projectType, complexityScore) || p.Status != "completed" {
			continue
		}

		similarity := jaccard(techStack, p.TechStack.Names())
		if similarity <= similarityThreshold {
			continue
		}

		actualCost := 0.0
		if p.ActualCost != nil {
			actualCost = *p.ActualCost
		}
		results = append(results, domain.SimilarProject{
			ProjectName:         p.ProjectName,
			ProjectCode:         p.ProjectCode,
			ComplexityScore:     p.ComplexityScore,
			ActualDurationWeeks: p.ActualDurationWeeks,
			ActualCost:          actualCost,
			TeamSize:            p.TeamSize,
			TechStack:           p.TechStack,
			OnTimeDelivery:      p.OnTimeDelivery,
			WithinBudget:        p.WithinBudget,
			ClientSatisfaction:  p.ClientSatisfaction,
			LessonsLearned:      p.LessonsLearned,
			TechSimilarity:      similarity,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TechSimilarity > results[j].TechSimilarity
	})
	if len(results) > maxSimilarProjects {
		results = results[:maxSimilarProjects]
	}
	return results
}

// CostEstimates aggregates actual costs over completed projects of the same
// type within the complexity window that carry a recorded cost.
func (idx *Index) CostEstimates(projectType string, complexityScore int) domain.CostStats {
	var (
		stats     domain.CostStats
		totalCost float64
		totalDur  float64
		totalTeam float64
	)
	for _, p := range idx.projects {
		if !idx.comparable(p, projectType, complexityScore) || p.Status != "completed" || p.ActualCost == nil {
			continue
		}

		cost := *p.ActualCost
		if stats.SampleSize == 0 || cost < stats.MinCost {
			stats.MinCost = cost
		}
		if cost > stats.MaxCost {
			stats.MaxCost = cost
		}
		totalCost += cost
		totalDur += float64(p.ActualDurationWeeks)
		totalTeam += float64(p.TeamSize)
		stats.SampleSize++
	}
	if stats.SampleSize == 0 {
		return domain.CostStats{}
	}

	n := float64(stats.SampleSize)
	stats.AvgCost = totalCost / n
	stats.AvgDurationWeeks = totalDur / n
	stats.AvgTeamSize = totalTeam / n
	if stats.AvgDurationWeeks > 0 {
		stats.CostPerWeek = stats.AvgCost / stats.AvgDurationWeeks
	}
	if stats.AvgTeamSize > 0 {
		stats.CostPerTeamMember = stats.AvgCost / stats.AvgTeamSize
	}
	return stats
}

// TeamPerformanceMetrics reports global roster statistics. The tech stack
// argument is accepted but not used as a filter; the averages run over the
// whole roster and only the availability count is limited to active
// employees, mirroring the reference behavior.
func (idx *Index) TeamPerformanceMetrics(_ []string) domain.TeamMetrics {
	if len(idx.employees) == 0 {
		return domain.TeamMetrics{}
	}

	var metrics domain.TeamMetrics
	var totalRate, totalAvailability float64
	for _, e := range idx.employees {
		if e.IsActive {
			metrics.AvailableEmployees++
		}
		totalRate += e.HourlyRate
		totalAvailability += e.AvailabilityPercentage
	}
	metrics.TotalEmployees = len(idx.employees)
	metrics.AvgHourlyRate = totalRate / float64(metrics.TotalEmployees)
	metrics.AvgAvailability = totalAvailability / float64(metrics.TotalEmployees)
	return metrics
}

// RiskIndicators lists same-type projects at or above complexityScore-1 that
// ran late, over budget, or below a 4.0 satisfaction rating. Unlike the
// similarity and cost queries this scans regardless of project status.
func (idx *Index) RiskIndicators(projectType string, complexityScore int) []domain.RiskIndicator {
	var indicators []domain.RiskIndicator
	for _, p := range idx.projects {
		if p.ProjectType != projectType || p.ComplexityScore < complexityScore-1 {
			continue
		}

		var issues []string
		if !p.OnTimeDelivery {
			overrun := 0.0
			if p.EstimatedDurationWeeks > 0 {
				overrun = float64(p.ActualDurationWeeks-p.EstimatedDurationWeeks) / float64(p.EstimatedDurationWeeks) * 100
			}
			issues = append(issues, fmt.Sprintf("Timeline overrun by %.1f%%", overrun))
		}
		if !p.WithinBudget {
			overrun := 0.0
			if p.EstimatedCost > 0 && p.ActualCost != nil {
				overrun = (*p.ActualCost - p.EstimatedCost) / p.EstimatedCost * 100
			}
			issues = append(issues, fmt.Sprintf("Budget overrun by %.1f%%", overrun))
		}
		if p.ClientSatisfaction < 4.0 {
			issues = append(issues, fmt.Sprintf("Low client satisfaction: %.1f/5.0", p.ClientSatisfaction))
		}
		if len(issues) == 0 {
			continue
		}

		indicators = append(indicators, domain.RiskIndicator{
			ProjectName:    p.ProjectName,
			Issues:         issues,
			LessonsLearned: p.LessonsLearned,
		})
		if len(indicators) == maxRiskIndicators {
			break
		}
	}
	return indicators
}

// TechnologyUsageStats counts technology occurrences across the frontend,
// backend and database stack fields of every project.
func (idx *Index) TechnologyUsageStats() domain.TechUsageStats {
	stats := domain.TechUsageStats{
		TotalProjectsAnalyzed: len(idx.projects),
		TechnologyStats:       map[string]domain.TechUsage{},
	}
	if len(idx.projects) == 0 {
		return stats
	}

	for _, p := range idx.projects {
		for _, category := range []string{"frontend", "backend", "database"} {
			tech := p.TechStack[category]
			if tech == "" {
				continue
			}
			usage := stats.TechnologyStats[tech]
			usage.Count++
			stats.TechnologyStats[tech] = usage
		}
	}
	for tech, usage := range stats.TechnologyStats {
		usage.UsagePercentage = float64(usage.Count) / float64(stats.TotalProjectsAnalyzed) * 100
		stats.TechnologyStats[tech] = usage
	}
	return stats
}

// AvailableEmployees returns the active roster with skills.
func (idx *Index) AvailableEmployees() []domain.Employee {
	var active []domain.Employee
	for _, e := range idx.employees {
		if e.IsActive {
			active = append(active, e)
		}
	}
	return active
}

func (idx *Index) comparable(p domain.HistoricalProject, projectType string, complexityScore int) bool {
	if p.ProjectType != projectType {
		return false
	}
	diff := p.ComplexityScore - complexityScore
	return diff >= -complexityWindow && diff <= complexityWindow
}

// jaccard is intersection over union of two technology-name sets.
func jaccard(a, b []string) float64 {
	union := map[string]bool{}
	setA := map[string]bool{}
	for _, name := range a {
		setA[name] = true
		union[name] = true
	}
	intersection := 0
	seenB := map[string]bool{}
	for _, name := range b {
		if seenB[name] {
			continue
		}
		seenB[name] = true
		union[name] = true
		if setA[name] {
			intersection++
		}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}
