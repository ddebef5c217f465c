package domain

// SimilarProject is a historical project ranked by tech-stack similarity.
type SimilarProject struct {
	ProjectName         string    `json:"project_name"`
	ProjectCode         string    `json:"project_code"`
	ComplexityScore     int       `json:"complexity_score"`
	ActualDurationWeeks int       `json:"actual_duration_weeks"`
	ActualCost          float64   `json:"actual_cost"`
	TeamSize            int       `json:"team_size"`
	TechStack           TechStack `json:"tech_stack"`
	OnTimeDelivery      bool      `json:"on_time_delivery"`
	WithinBudget        bool      `json:"within_budget"`
	ClientSatisfaction  float64   `json:"client_satisfaction"`
	LessonsLearned      string    `json:"lessons_learned"`
	TechSimilarity      float64   `json:"tech_similarity"`
}

// CostStats aggregates actual costs of comparable completed projects.
type CostStats struct {
	AvgCost           float64 `json:"avg_cost"`
	MinCost           float64 `json:"min_cost"`
	MaxCost           float64 `json:"max_cost"`
	AvgDurationWeeks  float64 `json:"avg_duration_weeks"`
	AvgTeamSize       float64 `json:"avg_team_size"`
	CostPerWeek       float64 `json:"cost_per_week"`
	CostPerTeamMember float64 `json:"cost_per_team_member"`
	SampleSize        int     `json:"sample_size"`
}

type TeamMetrics struct {
	AvailableEmployees int     `json:"available_employees"`
	AvgHourlyRate      float64 `json:"avg_hourly_rate"`
	AvgAvailability    float64 `json:"avg_availability"`
	TotalEmployees     int     `json:"total_employees"`
}

type RiskIndicator struct {
	ProjectName    string   `json:"project_name"`
	Issues         []string `json:"issues"`
	LessonsLearned string   `json:"lessons_learned"`
}

type TechUsage struct {
	Count           int     `json:"count"`
	UsagePercentage float64 `json:"usage_percentage"`
}

type TechUsageStats struct {
	TotalProjectsAnalyzed int                  `json:"total_projects_analyzed"`
	TechnologyStats       map[string]TechUsage `json:"technology_stats"`
}
