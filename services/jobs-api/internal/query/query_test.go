package query

import (
	"sort"
	"testing"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) models.Date {
	return models.DateOf(time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC))
}

func fixtures() []*models.JobPosting {
	return []*models.JobPosting{
		{ID: 1, Title: "Senior Health Actuary", Company: "Aetna", Location: "Hartford, CT", JobType: "Remote", PostingDate: day(10), Tags: []string{"Health Insurance", "FSA"}},
		{ID: 2, Title: "Pricing Actuary", Company: "Allstate", Location: "Remote", JobType: "Remote", PostingDate: day(12), Tags: []string{"P&C", "Pricing"}},
		{ID: 3, Title: "Actuarial Analyst", Company: "Humana Health", Location: "Louisville, KY", JobType: "Full-time", PostingDate: day(12), Tags: []string{"Entry Level"}},
		{ID: 4, Title: "chief actuary", Company: "MetLife", Location: "New York, NY", JobType: "Full-time", PostingDate: day(1), Tags: []string{"Life Insurance", "Leadership"}},
	}
}

func ids(postings []*models.JobPosting) []int64 {
	out := make([]int64, len(postings))
	for i, p := range postings {
		out[i] = p.ID
	}
	return out
}

func TestParseSort(t *testing.T) {
	tests := map[string]Sort{
		"":                  DefaultSort,
		"title_asc":         SortTitleAsc,
		"TITLE_DESC":        SortTitleDesc,
		"posting_date_asc":  SortPostingDateAsc,
		"posting_date_desc": SortPostingDateDesc,
		"salary":            DefaultSort,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseSort(raw), raw)
	}
}

func TestFilterComposition(t *testing.T) {
	got := Filter{JobType: "Remote", Keyword: "Health"}.Apply(fixtures())

	assert.Equal(t, []int64{1}, ids(got))
	for _, p := range got {
		assert.Equal(t, "Remote", p.JobType)
	}
}

func TestKeywordSearchesTitleCompanyAndTags(t *testing.T) {
	tests := []struct {
		keyword string
		want    []int64
	}{
		{keyword: "health", want: []int64{3, 1}},
		{keyword: "METLIFE", want: []int64{4}},
		{keyword: "p&c", want: []int64{2}},
		{keyword: "leadership", want: []int64{4}},
		{keyword: "underwriter", want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter{Keyword: tt.keyword}.Apply(fixtures())))
		})
	}
}

func TestLocationIsCaseInsensitiveSubstring(t *testing.T) {
	got := Filter{Location: "new york"}.Apply(fixtures())
	assert.Equal(t, []int64{4}, ids(got))
}

func TestSorts(t *testing.T) {
	tests := []struct {
		sort Sort
		want []int64
	}{
		{sort: SortPostingDateDesc, want: []int64{2, 3, 1, 4}},
		{sort: SortPostingDateAsc, want: []int64{4, 1, 2, 3}},
		{sort: "bogus", want: []int64{2, 3, 1, 4}},
		{sort: SortTitleAsc, want: []int64{3, 2, 1, 4}},
		{sort: SortTitleDesc, want: []int64{4, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter{Sort: tt.sort}.Apply(fixtures())))
		})
	}
}

func TestTitleAscIsNonDecreasing(t *testing.T) {
	got := Filter{Sort: SortTitleAsc}.Apply(fixtures())
	titles := make([]string, len(got))
	for i, p := range got {
		titles[i] = p.Title
	}
	assert.True(t, sort.StringsAreSorted(titles))
}

func TestSQL(t *testing.T) {
	where, args, orderBy := Filter{
		JobType:  "Remote",
		Location: "50%_off",
		Keyword:  "health",
		Sort:     SortTitleAsc,
	}.SQL()

	assert.Equal(t,
		`WHERE job_type = $1 AND location ILIKE $2 ESCAPE '\' AND (title ILIKE $3 ESCAPE '\' OR company ILIKE $3 ESCAPE '\' OR array_to_string(tags, ',') ILIKE $3 ESCAPE '\')`,
		where)
	require.Len(t, args, 3)
	assert.Equal(t, "Remote", args[0])
	assert.Equal(t, `%50\%\_off%`, args[1])
	assert.Equal(t, "%health%", args[2])
	assert.Equal(t, `ORDER BY title COLLATE "C" ASC, id ASC`, orderBy)
}

func TestSQLUnfiltered(t *testing.T) {
	where, args, orderBy := Filter{}.SQL()
	assert.Empty(t, where)
	assert.Empty(t, args)
	assert.Equal(t, "ORDER BY posting_date DESC, id ASC", orderBy)
}
