package enrich

import (
	"hash/fnv"
	"strings"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/models"
)

const dateLayout = "2006-01-02"

// Enricher fills the fields a source page does not supply. Everything it writes is
// synthetic.
type Enricher interface {
	Enrich(p *models.JobPosting, index int)
}

// Synthetic derives posting date, job type, tags, salary and description from the
// title, company and candidate index. Equal inputs on the same day give equal output.
type Synthetic struct {
	tables *Tables
	now    func() time.Time
}

func NewSynthetic(tables *Tables, now func() time.Time) *Synthetic {
	if now == nil {
		now = time.Now
	}
	return &Synthetic{
		tables: tables,
		now:    now,
	}
}

func (s *Synthetic) Enrich(p *models.JobPosting, index int) {
	lower := strings.ToLower(p.Title)

	p.PostingDate = s.postingDate(index)
	p.JobType = Pick(s.tables.JobTypes, index)
	p.Tags = s.tags(lower, index)
	p.Salary = s.salary(lower, index)
	p.Description = s.description(p.Title, p.Company)
}

func (s *Synthetic) postingDate(index int) string {
	age := (index * 7) % (s.tables.MaxPostingAgeDays + 1)
	return s.now().UTC().AddDate(0, 0, -age).Format(dateLayout)
}

func (s *Synthetic) tags(lowerTitle string, index int) []string {
	set := Pick(s.tables.TagSets, index)
	for _, rule := range s.tables.TagRules {
		if containsAny(lowerTitle, rule.Keywords) {
			set = s.tables.TagSets[rule.TagSet]
			break
		}
	}
	return append([]string{}, set...)
}

func (s *Synthetic) salary(lowerTitle string, index int) string {
	options := s.tables.DefaultSalaryBand
	for _, band := range s.tables.SalaryBands {
		if containsAny(lowerTitle, band.Keywords) {
			options = band.Options
			break
		}
	}
	return Pick(options, index)
}

func (s *Synthetic) description(title, company string) string {
	h := fnv.New32a()
	h.Write([]byte(title + company))
	templates := s.tables.DescriptionTemplates
	tmpl := templates[h.Sum32()%uint32(len(templates))]

	return strings.NewReplacer("{title}", title, "{company}", company).Replace(tmpl)
}

// Fallback returns the hand-authored postings dated day.
func (t *Tables) Fallback(day time.Time) []models.JobPosting {
	date := day.UTC().Format(dateLayout)
	out := make([]models.JobPosting, len(t.FallbackPostings))
	for i, f := range t.FallbackPostings {
		out[i] = models.JobPosting{
			Title:       f.Title,
			Company:     f.Company,
			Location:    f.Location,
			PostingDate: date,
			JobType:     f.JobType,
			Tags:        append([]string{}, f.Tags...),
			Description: f.Description,
			Salary:      f.Salary,
		}
	}
	return out
}

// IsActuarial reports whether title mentions any actuarial keyword.
func (t *Tables) IsActuarial(title string) bool {
	return containsAny(strings.ToLower(title), t.ActuarialKeywords)
}

// Pick is the cyclic lookup list[index % len(list)]. list must not be empty.
func Pick[T any](list []T, index int) T {
	if index < 0 {
		index = -index
	}
	return list[index%len(list)]
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
