// Package matching ranks roster employees against the roles of an estimated
// team composition using a weighted keyword/seniority/skill score.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/projectscope/estimation-service/internal/core/domain"
)

const (
	titleMatchPoints        = 15
	seniorityExactPoints    = 20
	seniorityAdjacentPoints = 10
	maxSkillPoints          = 10
	maxScore                = 100
	maxRecommendations      = 3
)

var seniorityLevels = map[string]int{
	"junior":    1,
	"mid":       2,
	"mid-level": 2,
	"senior":    3,
	"lead":      4,
	"principal": 5,
	"staff":     5,
}

type Matcher struct {
	roster   []domain.Employee
	keywords map[string][]string
}

type Option func(*Matcher)

// WithKeywordTable replaces the built-in role-category keyword table.
func WithKeywordTable(table map[string][]string) Option {
	return func(m *Matcher) {
		if len(table) > 0 {
			m.keywords = table
		}
	}
}

func NewMatcher(roster []domain.Employee, opts ...Option) *Matcher {
	m := &Matcher{
		roster:   roster,
		keywords: defaultKeywordTable,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match attaches up to three recommended employees to every role. An empty
// roster returns the composition unchanged; enrichment never blocks the
// pipeline.
func (m *Matcher) Match(team []domain.RoleRequirement, requiredSkills []string) ([]domain.RoleRequirement, error) {
	if len(m.roster) == 0 {
		return team, nil
	}

	enriched := make([]domain.RoleRequirement, len(team))
	for i, role := range team {
		roleSkills := m.roleSkills(role.Role, requiredSkills)
		candidates := m.rankCandidates(role.Role, role.Seniority, roleSkills)
		if len(candidates) > maxRecommendations {
			candidates = candidates[:maxRecommendations]
		}
		role.RecommendedEmployees = candidates
		enriched[i] = role
	}
	return enriched, nil
}

// roleSkills derives the skill keywords relevant for a role: the keyword
// lists of every category whose name occurs in the lowercased role title,
// plus any externally required skill that fuzzy-matches one of them.
func (m *Matcher) roleSkills(roleTitle string, requiredSkills []string) []string {
	roleLower := strings.ToLower(roleTitle)

	var categories []string
	for category := range m.keywords {
		if strings.Contains(roleLower, category) {
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)

	var relevant []string
	seen := map[string]bool{}
	for _, category := range categories {
		for _, kw := range m.keywords[category] {
			if !seen[kw] {
				seen[kw] = true
				relevant = append(relevant, kw)
			}
		}
	}

	for _, skill := range requiredSkills {
		skillLower := strings.ToLower(skill)
		for _, kw := range relevant {
			if fuzzyMatch(kw, skillLower) {
				if !seen[skill] {
					seen[skill] = true
					relevant = append(relevant, skill)
				}
				break
			}
		}
	}
	return relevant
}

func (m *Matcher) rankCandidates(roleTitle, seniority string, roleSkills []string) []domain.MatchedEmployee {
	var candidates []domain.MatchedEmployee
	for _, employee := range m.roster {
		score, matchingSkills := scoreEmployee(employee, roleTitle, seniority, roleSkills)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, domain.MatchedEmployee{
			EmployeeID:      employee.EmployeeID,
			Name:            employee.Name,
			Title:           employee.Title,
			SeniorityLevel:  employee.SeniorityLevel,
			HourlyRate:      employee.HourlyRate,
			Availability:    fmt.Sprintf("%g%%", employee.AvailabilityPercentage),
			Location:        employee.Location,
			MatchScore:      score,
			MatchingSkills:  matchingSkills,
			TotalSkills:     len(employee.Skills),
			MatchPercentage: int(score),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})
	return candidates
}

// scoreEmployee computes the weighted match score in [0,100]:
// title keyword overlap 15, seniority 20/10, each fuzzy-matched skill up to
// 10 points weighted by proficiency.
func scoreEmployee(employee domain.Employee, roleTitle, seniority string, roleSkills []string) (float64, []domain.MatchingSkill) {
	var score float64
	var matchingSkills []domain.MatchingSkill

	employeeTitle := strings.ToLower(employee.Title)
	for _, keyword := range strings.Fields(strings.ToLower(roleTitle)) {
		if len(keyword) > 3 && strings.Contains(employeeTitle, keyword) {
			score += titleMatchPoints
			break
		}
	}

	requiredSeniority := strings.ToLower(seniority)
	employeeSeniority := strings.ToLower(employee.SeniorityLevel)
	switch {
	case requiredSeniority == employeeSeniority:
		score += seniorityExactPoints
	case seniorityCompatible(requiredSeniority, employeeSeniority):
		score += seniorityAdjacentPoints
	}

	for _, skill := range employee.Skills {
		skillName := strings.ToLower(skill.SkillName)
		for _, required := range roleSkills {
			if !fuzzyMatch(strings.ToLower(required), skillName) {
				continue
			}
			score += math.Min(float64(skill.ProficiencyLevel*2), maxSkillPoints)
			matchingSkills = append(matchingSkills, domain.MatchingSkill{
				Skill:       skill.SkillName,
				Proficiency: skill.ProficiencyLevel,
				Years:       skill.YearsExperience,
			})
			break
		}
	}

	score = math.Min(score, maxScore)
	return math.Round(score*100) / 100, matchingSkills
}

func seniorityCompatible(required, employee string) bool {
	reqLevel, ok := seniorityLevels[required]
	if !ok {
		reqLevel = 2
	}
	empLevel, ok := seniorityLevels[employee]
	if !ok {
		empLevel = 2
	}
	diff := reqLevel - empLevel
	return diff >= -1 && diff <= 1
}

// fuzzyMatch reports substring containment in either direction.
func fuzzyMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
