package enrich

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

func defaultTablesT(t *testing.T) *Tables {
	t.Helper()
	tables, err := LoadTables("")
	require.NoError(t, err)
	return tables
}

func TestEmbeddedTables(t *testing.T) {
	tables := defaultTablesT(t)

	assert.Len(t, tables.Titles, 15)
	assert.Len(t, tables.Companies, 23)
	assert.Len(t, tables.Locations, 16)
	assert.Len(t, tables.EnhancedTitles, 6)
	assert.Len(t, tables.TagSets, 15)
	assert.Len(t, tables.JobTypes, 6)
	assert.Len(t, tables.SalaryBands, 6)
	assert.Len(t, tables.DescriptionTemplates, 5)
	assert.Len(t, tables.FallbackPostings, 5)
	assert.Equal(t, "P&C Pricing Actuary", tables.EnhancedTitles[2])
}

func TestLoadTablesFromFileAndValidation(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("titles: []\n"), 0o600))
	_, err := LoadTables(bad)
	assert.ErrorContains(t, err, "is empty")

	_, err = LoadTables(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	tables := defaultTablesT(t)
	tables.TagRules = append(tables.TagRules, TagRule{Keywords: []string{"x"}, TagSet: 99})
	assert.ErrorContains(t, tables.Validate(), "missing tag set")
}

func TestSyntheticEnrichmentRules(t *testing.T) {
	s := NewSynthetic(defaultTablesT(t), func() time.Time { return today })

	tests := []struct {
		name     string
		title    string
		index    int
		tags     []string
		salary   string
		jobType  string
		postedOn string
	}{
		{
			name: "life title picks life tags, senior band", title: "Senior Life Insurance Actuary", index: 0,
			tags: []string{"Life Insurance", "Pricing", "Reserving", "Excel", "SQL"}, salary: "$120,000 - $180,000",
			jobType: "Full-time", postedOn: "2026-10-19",
		},
		{
			name: "chief picks leadership tags and top band", title: "Chief Actuarial Officer", index: 4,
			tags: []string{"Leadership", "Strategy", "Regulatory", "GAAP", "Statutory"}, salary: "$250,000 - $400,000",
			jobType: "Contract", postedOn: "2026-09-21",
		},
		{
			name: "no rule falls back to cyclic tags and default band", title: "Actuary", index: 16,
			tags: []string{"Property & Casualty", "Modeling", "R", "Python", "Statistics"}, salary: "$95,000 - $135,000",
			jobType: "Contract", postedOn: "2026-09-30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.JobPosting{Title: tt.title, Company: "MetLife"}
			s.Enrich(p, tt.index)

			assert.Equal(t, tt.tags, p.Tags)
			assert.Equal(t, tt.salary, p.Salary)
			assert.Equal(t, tt.jobType, p.JobType)
			assert.Equal(t, tt.postedOn, p.PostingDate)
			assert.Contains(t, p.Description, tt.title)
			assert.Contains(t, p.Description, "MetLife")
			assert.NotContains(t, p.Description, "{title}")
		})
	}
}

func TestSyntheticIsDeterministic(t *testing.T) {
	s := NewSynthetic(defaultTablesT(t), func() time.Time { return today })

	a := &models.JobPosting{Title: "Pricing Actuary", Company: "Allstate"}
	b := &models.JobPosting{Title: "Pricing Actuary", Company: "Allstate"}
	s.Enrich(a, 7)
	s.Enrich(b, 7)
	assert.Equal(t, a, b)

	a.Tags[0] = "mutated"
	c := &models.JobPosting{Title: "Pricing Actuary", Company: "Allstate"}
	s.Enrich(c, 7)
	assert.NotEqual(t, "mutated", c.Tags[0])
}

func TestPostingDateWithinMaxAge(t *testing.T) {
	tables := defaultTablesT(t)
	s := NewSynthetic(tables, func() time.Time { return today })

	for i := 0; i < 50; i++ {
		d, err := time.Parse(dateLayout, s.postingDate(i))
		require.NoError(t, err)
		age := today.Truncate(24*time.Hour).Sub(d).Hours() / 24
		assert.GreaterOrEqual(t, age, 0.0)
		assert.LessOrEqual(t, age, float64(tables.MaxPostingAgeDays))
	}
}

func TestFallback(t *testing.T) {
	postings := defaultTablesT(t).Fallback(today)

	require.Len(t, postings, 5)
	assert.Equal(t, "Senior Life Insurance Actuary", postings[0].Title)
	assert.Equal(t, "Travelers", postings[4].Company)
	for _, p := range postings {
		assert.Equal(t, "2026-10-19", p.PostingDate)
		assert.NotEmpty(t, p.Tags)
	}
}

func TestIsActuarialAndPick(t *testing.T) {
	tables := defaultTablesT(t)
	assert.True(t, tables.IsActuarial("Reserving Lead"))
	assert.False(t, tables.IsActuarial("Software Engineer"))

	assert.Equal(t, "b", Pick([]string{"a", "b", "c"}, 4))
}
