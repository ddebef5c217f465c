// Package refdata loads the historical project and employee reference set
// from CSV or XLSX files at startup.
package refdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

type Loader struct {
	projectsPath  string
	employeesPath string
	skillsPath    string
}

func NewLoader(projectsPath, employeesPath, skillsPath string) *Loader {
	return &Loader{
		projectsPath:  projectsPath,
		employeesPath: employeesPath,
		skillsPath:    skillsPath,
	}
}

// Load reads all three reference files. Malformed rows are skipped with a
// warning; missing optional files yield an empty section.
func (l *Loader) Load(ctx context.Context) (domain.ReferenceSnapshot, error) {
	var snapshot domain.ReferenceSnapshot

	if l.projectsPath != "" {
		rows, err := readRows(l.projectsPath)
		if err != nil {
			return domain.ReferenceSnapshot{}, fmt.Errorf("load projects: %w", err)
		}
		snapshot.Projects = parseProjects(rows)
	}

	if l.employeesPath != "" {
		rows, err := readRows(l.employeesPath)
		if err != nil {
			return domain.ReferenceSnapshot{}, fmt.Errorf("load employees: %w", err)
		}
		snapshot.Employees = parseEmployees(rows)
	}

	if l.skillsPath != "" && len(snapshot.Employees) > 0 {
		rows, err := readRows(l.skillsPath)
		if err != nil {
			return domain.ReferenceSnapshot{}, fmt.Errorf("load employee skills: %w", err)
		}
		attachSkills(snapshot.Employees, rows)
	}

	if err := ctx.Err(); err != nil {
		return domain.ReferenceSnapshot{}, err
	}

	slog.Info("reference_data_loaded",
		"projects", len(snapshot.Projects),
		"employees", len(snapshot.Employees))
	return snapshot, nil
}

// row is one record keyed by lowercased header name.
type row map[string]string

func readRows(path string) ([]row, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSXRows(path)
	}
	return readCSVRows(path)
}

func readCSVRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return mapRecords(records), nil
}

func readXLSXRows(path string) ([]row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in %s", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return mapRecords(records), nil
}

func mapRecords(records [][]string) []row {
	if len(records) < 2 {
		return nil
	}
	header := records[0]
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	rows := make([]row, 0, len(records)-1)
	for _, record := range records[1:] {
		r := make(row, len(header))
		for i, name := range header {
			if i < len(record) {
				r[name] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func parseProjects(rows []row) []domain.HistoricalProject {
	projects := make([]domain.HistoricalProject, 0, len(rows))
	for i, r := range rows {
		name := r["project_name"]
		if name == "" {
			slog.Warn("skipping_project_row", "row", i+2, "reason", "missing project_name")
			continue
		}
		complexity, err := strconv.Atoi(r["complexity_score"])
		if err != nil {
			slog.Warn("skipping_project_row", "row", i+2, "reason", "bad complexity_score", "value", r["complexity_score"])
			continue
		}

		project := domain.HistoricalProject{
			ProjectName:            name,
			ProjectCode:            r["project_code"],
			ProjectType:            r["project_type"],
			ComplexityScore:        complexity,
			EstimatedDurationWeeks: parseInt(r["estimated_duration_weeks"]),
			ActualDurationWeeks:    parseInt(r["actual_duration_weeks"]),
			EstimatedCost:          parseFloat(r["estimated_cost"]),
			TeamSize:               parseInt(r["team_size"]),
			TechStack: domain.TechStack{
				"frontend": r["tech_stack_frontend"],
				"backend":  r["tech_stack_backend"],
				"database": r["tech_stack_database"],
			},
			Status:             r["status"],
			OnTimeDelivery:     parseBool(r["on_time_delivery"]),
			WithinBudget:       parseBool(r["within_budget"]),
			ClientSatisfaction: parseFloat(r["client_satisfaction"]),
			QualityScore:       parseFloat(r["quality_score"]),
			LessonsLearned:     r["lessons_learned"],
		}
		if cost := r["actual_cost"]; cost != "" {
			if v, err := strconv.ParseFloat(cost, 64); err == nil {
				project.ActualCost = &v
			}
		}
		projects = append(projects, project)
	}
	return projects
}

func parseEmployees(rows []row) []domain.Employee {
	employees := make([]domain.Employee, 0, len(rows))
	for i, r := range rows {
		id := r["employee_id"]
		if id == "" || r["name"] == "" {
			slog.Warn("skipping_employee_row", "row", i+2, "reason", "missing employee_id or name")
			continue
		}
		employees = append(employees, domain.Employee{
			EmployeeID:             id,
			Name:                   r["name"],
			Email:                  r["email"],
			Title:                  r["title"],
			SeniorityLevel:         r["seniority_level"],
			HourlyRate:             parseFloat(r["hourly_rate"]),
			AvailabilityPercentage: parseFloat(r["availability_percentage"]),
			Department:             r["department"],
			Location:               r["location"],
			IsActive:               parseBool(r["is_active"]),
		})
	}
	return employees
}

func attachSkills(employees []domain.Employee, rows []row) {
	byID := make(map[string]*domain.Employee, len(employees))
	for i := range employees {
		byID[employees[i].EmployeeID] = &employees[i]
	}

	for i, r := range rows {
		emp, ok := byID[r["employee_id"]]
		if !ok {
			continue
		}
		if r["skill_name"] == "" {
			slog.Warn("skipping_skill_row", "row", i+2, "reason", "missing skill_name")
			continue
		}
		emp.Skills = append(emp.Skills, domain.EmployeeSkill{
			SkillName:        r["skill_name"],
			ProficiencyLevel: parseInt(r["proficiency_level"]),
			YearsExperience:  parseFloat(r["years_experience"]),
			IsPrimarySkill:   parseBool(r["is_primary_skill"]),
			Certified:        parseBool(r["certified"]),
		})
	}
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true
	default:
		return false
	}
}
