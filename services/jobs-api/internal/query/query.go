// Package query holds the filter and sort rules for listing job postings. The memory
// store evaluates them directly and the Postgres store renders them as SQL.
package query

import (
	"sort"
	"strings"

	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
)

type Sort string

const (
	SortPostingDateDesc Sort = "posting_date_desc"
	SortPostingDateAsc  Sort = "posting_date_asc"
	SortTitleAsc        Sort = "title_asc"
	SortTitleDesc       Sort = "title_desc"

	DefaultSort = SortPostingDateDesc
)

// ParseSort maps a sort parameter to a Sort. Empty or unknown values yield DefaultSort.
func ParseSort(raw string) Sort {
	switch s := Sort(strings.ToLower(strings.TrimSpace(raw))); s {
	case SortPostingDateDesc, SortPostingDateAsc, SortTitleAsc, SortTitleDesc:
		return s
	default:
		return DefaultSort
	}
}

// Filter is a conjunction of optional predicates. Empty fields match everything.
type Filter struct {
	JobType  string
	Location string
	Keyword  string
	Sort     Sort
}

// Matches reports whether p satisfies every non-empty predicate in f.
func (f Filter) Matches(p *models.JobPosting) bool {
	if f.JobType != "" && p.JobType != f.JobType {
		return false
	}
	if f.Location != "" && !containsFold(p.Location, f.Location) {
		return false
	}
	if f.Keyword != "" &&
		!containsFold(p.Title, f.Keyword) &&
		!containsFold(p.Company, f.Keyword) &&
		!containsFold(JoinTags(p.Tags), f.Keyword) {
		return false
	}
	return true
}

// Apply returns the postings that match f in f's order. Ties are broken by ascending id.
func (f Filter) Apply(postings []*models.JobPosting) []*models.JobPosting {
	out := make([]*models.JobPosting, 0, len(postings))
	for _, p := range postings {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	less := f.less()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.ID < b.ID
	})
	return out
}

func (f Filter) less() func(a, b *models.JobPosting) bool {
	switch ParseSort(string(f.Sort)) {
	case SortPostingDateAsc:
		return func(a, b *models.JobPosting) bool { return a.PostingDate.Before(b.PostingDate.Time) }
	case SortTitleAsc:
		return func(a, b *models.JobPosting) bool { return a.Title < b.Title }
	case SortTitleDesc:
		return func(a, b *models.JobPosting) bool { return a.Title > b.Title }
	default:
		return func(a, b *models.JobPosting) bool { return a.PostingDate.After(b.PostingDate.Time) }
	}
}

// JoinTags is the text the keyword predicate searches for tags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
