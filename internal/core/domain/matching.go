package domain

// RoleRequirement is one entry of the estimation stage's team composition.
// The matcher enriches it with up to three recommended employees; the other
// fields are never altered.
type RoleRequirement struct {
	Role                 string            `json:"role"`
	Seniority            string            `json:"seniority"`
	HoursPerWeek         int               `json:"hours_per_week"`
	DurationWeeks        int               `json:"duration_weeks"`
	HourlyRate           float64           `json:"hourly_rate"`
	TotalCost            float64           `json:"total_cost"`
	KeyResponsibilities  []string          `json:"key_responsibilities,omitempty"`
	Justification        string            `json:"justification,omitempty"`
	RecommendedEmployees []MatchedEmployee `json:"recommended_employees,omitempty"`
}

type MatchingSkill struct {
	Skill       string  `json:"skill"`
	Proficiency int     `json:"proficiency"`
	Years       float64 `json:"years"`
}

type MatchedEmployee struct {
	EmployeeID      string          `json:"employee_id"`
	Name            string          `json:"name"`
	Title           string          `json:"title"`
	SeniorityLevel  string          `json:"seniority_level"`
	HourlyRate      float64         `json:"hourly_rate"`
	Availability    string          `json:"availability"`
	Location        string          `json:"location"`
	MatchScore      float64         `json:"match_score"`
	MatchingSkills  []MatchingSkill `json:"matching_skills"`
	TotalSkills     int             `json:"total_skills"`
	MatchPercentage int             `json:"match_percentage"`
}
