package extract

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/enrich"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixture = `
<html><body>
  <nav class="row">Home</nav>
  <div class="job-listing">
    <h2>Senior   Pricing Actuary</h2>
    <span class="company">Allstate</span>
    <span class="location">Chicago, IL</span>
  </div>
  <div class="job-listing">
    <h3>Software Engineer</h3>
    <div class="company">Acme &amp; Sons</div>
    <div class="location">Remote</div>
  </div>
  <div class="job-listing"><a>ok</a></div>
</body></html>`

type indexEnricher struct{}

func (indexEnricher) Enrich(p *models.JobPosting, index int) {
	p.JobType = strconv.Itoa(index)
}

var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

func newExtractor(t *testing.T, enricher enrich.Enricher) *Extractor {
	t.Helper()
	tables, err := enrich.LoadTables("")
	require.NoError(t, err)
	return NewExtractor(DefaultSelectors(), tables, enricher, 25, zap.NewNop()).
		WithClock(func() time.Time { return today })
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  Senior \n\t Actuary  ", want: "Senior Actuary"},
		{in: "P&C Pricing (Remote) / Hybrid", want: "P&C Pricing (Remote) / Hybrid"},
		{in: "Actuary!!! *now* #1", want: "Actuary now 1"},
		{in: "Ｆｕｌｌ－ｗｉｄｔｈ", want: "Full-width"},
		{in: "Zürich Versicherung", want: "Zürich Versicherung"},
		{in: "$120,000 - 150k", want: "120,000 - 150k"},
		{in: "★ ★", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.in))
		})
	}
}

func TestCleanTextTruncates(t *testing.T) {
	got := CleanText(strings.Repeat("é", 250))
	assert.Equal(t, 200, len([]rune(got)))
}

func TestParseCandidatesUsesFirstMatchingSelector(t *testing.T) {
	candidates, selector, err := ParseCandidates(fixture, DefaultSelectors().Candidates)
	require.NoError(t, err)

	assert.Equal(t, ".job-listing", selector)
	require.Len(t, candidates, 3)
	assert.Equal(t, "Allstate", candidates[0].Probe(".company"))
	assert.Equal(t, "", candidates[0].Probe(".missing"))
}

func TestParseCandidatesNoMatch(t *testing.T) {
	candidates, selector, err := ParseCandidates("<html><body><p>nothing here</p></body></html>", []string{".job-card", "article"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.Empty(t, selector)
}

func TestExtractFromMarkup(t *testing.T) {
	candidates, _, err := ParseCandidates(fixture, DefaultSelectors().Candidates)
	require.NoError(t, err)

	result := newExtractor(t, indexEnricher{}).Extract(candidates)

	assert.False(t, result.Fallback)
	assert.Equal(t, 3, result.Candidates)
	require.Len(t, result.Postings, 3)

	first := result.Postings[0]
	assert.Equal(t, "Senior Pricing Actuary", first.Title)
	assert.Equal(t, "Allstate", first.Company)
	assert.Equal(t, "Chicago, IL", first.Location)
	assert.Equal(t, "0", first.JobType)

	second := result.Postings[1]
	assert.Equal(t, "Life Insurance Actuary", second.Title, "non-actuarial titles are enhanced")
	assert.Equal(t, "Acme & Sons", second.Company)
	assert.Equal(t, "Remote", second.Location)

	third := result.Postings[2]
	assert.Equal(t, "Healthcare Consulting Actuary", third.Title, "short text is ignored and a placeholder used")
	assert.Equal(t, "Milliman", third.Company)
	assert.Equal(t, "Boston, MA", third.Location)
}

func TestExtractZeroCandidatesFallsBack(t *testing.T) {
	result := newExtractor(t, indexEnricher{}).Extract(nil)

	assert.True(t, result.Fallback)
	require.Len(t, result.Postings, 5)
	assert.Equal(t, "MetLife", result.Postings[0].Company)
	assert.Equal(t, "2026-10-19", result.Postings[0].PostingDate)
}

type staticCandidate map[string]string

func (c staticCandidate) Probe(selector string) string { return c[selector] }

func TestExtractCapsCandidates(t *testing.T) {
	candidates := make([]Candidate, 40)
	for i := range candidates {
		candidates[i] = staticCandidate{}
	}

	result := newExtractor(t, indexEnricher{}).Extract(candidates)
	assert.Equal(t, 25, result.Candidates)
	assert.Len(t, result.Postings, 25)
	assert.Equal(t, "24", result.Postings[24].JobType)
}

func TestExtractIsReproducible(t *testing.T) {
	tables, err := enrich.LoadTables("")
	require.NoError(t, err)
	enricher := enrich.NewSynthetic(tables, func() time.Time { return today })

	candidates := []Candidate{staticCandidate{}, staticCandidate{"h2": "Reserving Manager", "span": "Travelers"}}

	a := newExtractor(t, enricher).Extract(candidates)
	b := newExtractor(t, enricher).Extract(candidates)
	assert.Equal(t, a, b)

	assert.Equal(t, "Senior Life Insurance Actuary", a.Postings[0].Title)
	assert.Equal(t, "MetLife", a.Postings[0].Company)
	assert.Equal(t, "Reserving Manager", a.Postings[1].Title)
	assert.Equal(t, "Travelers", a.Postings[1].Company)
	assert.Equal(t, "Travelers", a.Postings[1].Location, "span is probed for location too")
}
