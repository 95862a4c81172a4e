package enrich

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

type TagRule struct {
	Keywords []string `yaml:"keywords"`
	TagSet   int      `yaml:"tag_set"`
}

type SalaryBand struct {
	Keywords []string `yaml:"keywords"`
	Options  []string `yaml:"options"`
}

type FallbackPosting struct {
	Title       string   `yaml:"title"`
	Company     string   `yaml:"company"`
	Location    string   `yaml:"location"`
	JobType     string   `yaml:"job_type"`
	Tags        []string `yaml:"tags"`
	Description string   `yaml:"description"`
	Salary      string   `yaml:"salary"`
}

// Tables is the reference data behind placeholders, title enhancement, synthetic
// enrichment and the fallback postings.
type Tables struct {
	Titles               []string          `yaml:"titles"`
	Companies            []string          `yaml:"companies"`
	Locations            []string          `yaml:"locations"`
	ActuarialKeywords    []string          `yaml:"actuarial_keywords"`
	EnhancedTitles       []string          `yaml:"enhanced_titles"`
	JobTypes             []string          `yaml:"job_types"`
	MaxPostingAgeDays    int               `yaml:"max_posting_age_days"`
	TagSets              [][]string        `yaml:"tag_sets"`
	TagRules             []TagRule         `yaml:"tag_rules"`
	SalaryBands          []SalaryBand      `yaml:"salary_bands"`
	DefaultSalaryBand    []string          `yaml:"default_salary_band"`
	DescriptionTemplates []string          `yaml:"description_templates"`
	FallbackPostings     []FallbackPosting `yaml:"fallback_postings"`
}

// LoadTables reads tables from path, or the embedded defaults when path is empty.
func LoadTables(path string) (*Tables, error) {
	data := defaultTables
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading reference tables: %w", err)
		}
		data = raw
	}
	return ParseTables(data)
}

func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing reference tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks every table indexed cyclically is non-empty and rule references resolve.
func (t *Tables) Validate() error {
	cyclic := map[string]int{
		"titles":                len(t.Titles),
		"companies":             len(t.Companies),
		"locations":             len(t.Locations),
		"enhanced_titles":       len(t.EnhancedTitles),
		"job_types":             len(t.JobTypes),
		"tag_sets":              len(t.TagSets),
		"default_salary_band":   len(t.DefaultSalaryBand),
		"description_templates": len(t.DescriptionTemplates),
		"fallback_postings":     len(t.FallbackPostings),
	}
	for name, n := range cyclic {
		if n == 0 {
			return fmt.Errorf("reference table %s is empty", name)
		}
	}
	if t.MaxPostingAgeDays < 0 {
		return fmt.Errorf("max_posting_age_days must not be negative")
	}
	for i, rule := range t.TagRules {
		if rule.TagSet < 0 || rule.TagSet >= len(t.TagSets) {
			return fmt.Errorf("tag rule %d references missing tag set %d", i, rule.TagSet)
		}
	}
	for i, band := range t.SalaryBands {
		if len(band.Options) == 0 {
			return fmt.Errorf("salary band %d has no options", i)
		}
	}
	for i, p := range t.FallbackPostings {
		if p.Title == "" || p.Company == "" || p.Location == "" {
			return fmt.Errorf("fallback posting %d is missing title, company or location", i)
		}
	}
	return nil
}
