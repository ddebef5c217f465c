package matching

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// defaultKeywordTable maps a role category to the skill keywords considered
// relevant for it. A role title is assigned every category whose name appears
// as a substring of the lowercased title.
var defaultKeywordTable = map[string][]string{
	"frontend":   {"react", "vue", "angular", "typescript", "javascript", "html", "css", "next.js", "tailwind"},
	"backend":    {"python", "node.js", "java", "c#", "go", "django", "flask", "fastapi", "spring", "express"},
	"full stack": {"react", "python", "node.js", "typescript", "javascript", "django", "flask", "express"},
	"mobile":     {"react native", "flutter", "swift", "kotlin", "ios", "android"},
	"devops":     {"docker", "kubernetes", "aws", "azure", "gcp", "ci/cd", "terraform", "jenkins"},
	"data":       {"python", "sql", "pandas", "numpy", "spark", "hadoop", "tableau"},
	"ai":         {"python", "tensorflow", "pytorch", "scikit-learn", "nlp", "computer vision"},
	"ml":         {"python", "tensorflow", "pytorch", "scikit-learn", "machine learning"},
	"qa":         {"selenium", "cypress", "jest", "pytest", "testing", "automation"},
	"designer":   {"figma", "sketch", "adobe xd", "ui/ux", "design"},
	"product":    {"agile", "scrum", "product management", "jira"},
	"architect":  {"system design", "architecture", "microservices", "scalability"},
}

// LoadKeywordTable reads a category->keywords mapping from a YAML file,
// allowing the built-in table to be tuned without a rebuild.
func LoadKeywordTable(path string) (map[string][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword table: %w", err)
	}
	var table map[string][]string
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse keyword table: %w", err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("keyword table %s is empty", path)
	}
	return table, nil
}
