package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors lists, in probe order, the CSS selectors used to find candidate elements
// and, inside each candidate, its title, company and location.
type Selectors struct {
	Candidates []string
	Title      []string
	Company    []string
	Location   []string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Candidates: []string{
			".job-listing", ".job-item", ".job-card",
			"[class*='job']", "article", ".listing",
			"[class*='position']", ".row", "tr",
		},
		Title:    []string{"h1", "h2", "h3", "h4", ".title", ".job-title", "[class*='title']", "a", "strong"},
		Company:  []string{".company", ".employer", "[class*='company']", "[class*='employer']", "span", "div"},
		Location: []string{".location", ".city", "[class*='location']", "[class*='city']", "span", "div"},
	}
}

// Candidate is one element that may describe a job posting.
type Candidate interface {
	// Probe returns the trimmed text of the first descendant matching selector, or "".
	Probe(selector string) string
}

type nodeCandidate struct {
	sel *goquery.Selection
}

func (c nodeCandidate) Probe(selector string) string {
	return strings.TrimSpace(c.sel.Find(selector).First().Text())
}

// ParseCandidates returns the elements matched by the first candidate selector that
// matches anything, along with that selector. No match yields an empty slice.
func ParseCandidates(markup string, selectors []string) ([]Candidate, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, "", err
	}

	for _, selector := range selectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		candidates := make([]Candidate, 0, found.Length())
		found.Each(func(_ int, s *goquery.Selection) {
			candidates = append(candidates, nodeCandidate{sel: s})
		})
		return candidates, selector, nil
	}
	return []Candidate{}, "", nil
}

// FirstText probes selectors in order and returns the first text longer than two
// characters.
func FirstText(c Candidate, selectors []string) string {
	for _, selector := range selectors {
		if text := c.Probe(selector); len([]rune(text)) > 2 {
			return text
		}
	}
	return ""
}
