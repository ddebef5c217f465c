package matching

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

func roster() []domain.Employee {
	return []domain.Employee{
		{
			EmployeeID:             "E-1",
			Name:                   "Ada Park",
			Title:                  "Senior Backend Developer",
			SeniorityLevel:         "Senior",
			HourlyRate:             95,
			AvailabilityPercentage: 80,
			IsActive:               true,
			Skills: []domain.EmployeeSkill{
				{SkillName: "Go", ProficiencyLevel: 5, YearsExperience: 7},
				{SkillName: "PostgreSQL", ProficiencyLevel: 4, YearsExperience: 6},
			},
		},
		{
			EmployeeID:             "E-2",
			Name:                   "Lee Ortiz",
			Title:                  "Frontend Developer",
			SeniorityLevel:         "Mid",
			HourlyRate:             70,
			AvailabilityPercentage: 100,
			IsActive:               true,
			Skills: []domain.EmployeeSkill{
				{SkillName: "React", ProficiencyLevel: 4, YearsExperience: 4},
			},
		},
	}
}

func backendRole() domain.RoleRequirement {
	return domain.RoleRequirement{
		Role:      "Backend Developer",
		Seniority: "Senior",
	}
}

func TestMatchEmptyRosterReturnsTeamUnchanged(t *testing.T) {
	m := NewMatcher(nil)
	team := []domain.RoleRequirement{backendRole()}

	got, err := m.Match(team, []string{"Go"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !reflect.DeepEqual(got, team) {
		t.Errorf("team altered: %+v", got)
	}
}

func TestMatchScoresAndRanks(t *testing.T) {
	m := NewMatcher(roster())

	got, err := m.Match([]domain.RoleRequirement{backendRole()}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	recs := got[0].RecommendedEmployees
	if len(recs) != 2 {
		t.Fatalf("recommendations = %d, want 2", len(recs))
	}

	// Ada: title keyword (15) + exact seniority (20) + Go at proficiency 5 (10).
	ada := recs[0]
	if ada.Name != "Ada Park" {
		t.Fatalf("top candidate = %s", ada.Name)
	}
	if ada.MatchScore != 45 {
		t.Errorf("Ada score = %v, want 45", ada.MatchScore)
	}
	if ada.MatchPercentage != 45 {
		t.Errorf("Ada match percentage = %d, want 45", ada.MatchPercentage)
	}
	if len(ada.MatchingSkills) != 1 || ada.MatchingSkills[0].Skill != "Go" {
		t.Errorf("Ada matching skills = %+v", ada.MatchingSkills)
	}
	if ada.TotalSkills != 2 {
		t.Errorf("Ada total skills = %d", ada.TotalSkills)
	}
	if ada.Availability != "80%" {
		t.Errorf("Ada availability = %q", ada.Availability)
	}

	// Lee: shared "developer" title word (15) + adjacent seniority (10).
	lee := recs[1]
	if lee.Name != "Lee Ortiz" {
		t.Fatalf("second candidate = %s", lee.Name)
	}
	if lee.MatchScore != 25 {
		t.Errorf("Lee score = %v, want 25", lee.MatchScore)
	}
}

func TestMatchScoreIsCappedAt100(t *testing.T) {
	skills := make([]domain.EmployeeSkill, 0, 8)
	for _, name := range []string{"Go", "Python", "Java", "Django", "Flask", "FastAPI", "Spring", "Express"} {
		skills = append(skills, domain.EmployeeSkill{SkillName: name, ProficiencyLevel: 5})
	}
	m := NewMatcher([]domain.Employee{{
		EmployeeID:     "E-3",
		Name:           "Max Vogel",
		Title:          "Senior Backend Developer",
		SeniorityLevel: "Senior",
		Skills:         skills,
	}})

	got, err := m.Match([]domain.RoleRequirement{backendRole()}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	rec := got[0].RecommendedEmployees[0]
	if rec.MatchScore != 100 {
		t.Errorf("score = %v, want capped 100", rec.MatchScore)
	}
	if rec.MatchPercentage != 100 {
		t.Errorf("match percentage = %d, want 100", rec.MatchPercentage)
	}
}

func TestMatchReturnsTopThree(t *testing.T) {
	var employees []domain.Employee
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		employees = append(employees, domain.Employee{
			EmployeeID:     name,
			Name:           name,
			Title:          "Backend Developer",
			SeniorityLevel: "Senior",
		})
	}
	m := NewMatcher(employees)

	got, err := m.Match([]domain.RoleRequirement{backendRole()}, nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	recs := got[0].RecommendedEmployees
	if len(recs) != 3 {
		t.Fatalf("recommendations = %d, want 3", len(recs))
	}
	// Equal scores keep roster order.
	if recs[0].Name != "A" || recs[1].Name != "B" || recs[2].Name != "C" {
		t.Errorf("tie order = %s, %s, %s", recs[0].Name, recs[1].Name, recs[2].Name)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	m := NewMatcher(roster())
	team := []domain.RoleRequirement{backendRole(), {Role: "Frontend Developer", Seniority: "Mid"}}
	skills := []string{"React 18", "Go", "PostgreSQL"}

	first, err := m.Match(team, skills)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := m.Match(team, skills)
		if err != nil {
			t.Fatalf("Match() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\nfirst %+v\nagain %+v", i, first, again)
		}
	}
}

func TestRequiredSkillsExtendRoleKeywords(t *testing.T) {
	m := NewMatcher(roster())

	// "React 18" fuzzy-matches the frontend keyword "react" and becomes
	// relevant for the frontend role.
	got, err := m.Match([]domain.RoleRequirement{{Role: "Frontend Developer", Seniority: "Mid"}}, []string{"React 18"})
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	var lee *domain.MatchedEmployee
	for i := range got[0].RecommendedEmployees {
		if got[0].RecommendedEmployees[i].Name == "Lee Ortiz" {
			lee = &got[0].RecommendedEmployees[i]
		}
	}
	if lee == nil {
		t.Fatalf("Lee not recommended: %+v", got[0].RecommendedEmployees)
	}
	if len(lee.MatchingSkills) != 1 || lee.MatchingSkills[0].Skill != "React" {
		t.Errorf("matching skills = %+v", lee.MatchingSkills)
	}
}

func TestScoreEmployeeBounds(t *testing.T) {
	for _, emp := range roster() {
		score, _ := scoreEmployee(emp, "Backend Developer", "Senior", []string{"go", "python"})
		if score < 0 || score > 100 {
			t.Errorf("score for %s out of bounds: %v", emp.Name, score)
		}
	}
}

func TestLoadKeywordTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := "backend:\n  - go\n  - rust\nfrontend:\n  - react\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	table, err := LoadKeywordTable(path)
	if err != nil {
		t.Fatalf("LoadKeywordTable() error = %v", err)
	}
	if !reflect.DeepEqual(table["backend"], []string{"go", "rust"}) {
		t.Errorf("backend keywords = %v", table["backend"])
	}

	if _, err := LoadKeywordTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
