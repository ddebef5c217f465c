package domain

// TechStack maps a stack category (frontend, backend, database, ...) to a
// technology name.
type TechStack map[string]string

// Names returns the non-empty technology names of the stack.
func (s TechStack) Names() []string {
	names := make([]string, 0, len(s))
	for _, tech := range s {
		if tech != "" {
			names = append(names, tech)
		}
	}
	return names
}

// HistoricalProject is a read-only record of a delivered past project, loaded
// once at index construction.
type HistoricalProject struct {
	ProjectName            string    `json:"project_name"`
	ProjectCode            string    `json:"project_code"`
	ProjectType            string    `json:"project_type"`
	ComplexityScore        int       `json:"complexity_score"`
	EstimatedDurationWeeks int       `json:"estimated_duration_weeks"`
	ActualDurationWeeks    int       `json:"actual_duration_weeks"`
	EstimatedCost          float64   `json:"estimated_cost"`
	ActualCost             *float64  `json:"actual_cost,omitempty"`
	TeamSize               int       `json:"team_size"`
	TechStack              TechStack `json:"tech_stack"`
	Status                 string    `json:"status"`
	OnTimeDelivery         bool      `json:"on_time_delivery"`
	WithinBudget           bool      `json:"within_budget"`
	ClientSatisfaction     float64   `json:"client_satisfaction"`
	QualityScore           float64   `json:"quality_score"`
	LessonsLearned         string    `json:"lessons_learned"`
}

type EmployeeSkill struct {
	SkillName        string  `json:"skill_name"`
	ProficiencyLevel int     `json:"proficiency_level"`
	YearsExperience  float64 `json:"years_experience"`
	IsPrimarySkill   bool    `json:"is_primary_skill"`
	Certified        bool    `json:"certified"`
}

// Employee is a read-only roster record.
type Employee struct {
	EmployeeID             string          `json:"employee_id"`
	Name                   string          `json:"name"`
	Email                  string          `json:"email"`
	Title                  string          `json:"title"`
	SeniorityLevel         string          `json:"seniority_level"`
	HourlyRate             float64         `json:"hourly_rate"`
	AvailabilityPercentage float64         `json:"availability_percentage"`
	Department             string          `json:"department"`
	Location               string          `json:"location"`
	IsActive               bool            `json:"is_active"`
	Skills                 []EmployeeSkill `json:"skills"`
}

// ReferenceSnapshot is the immutable reference data set the historical index
// is built from.
type ReferenceSnapshot struct {
	Projects  []HistoricalProject
	Employees []Employee
}
