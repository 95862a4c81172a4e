package extract

import (
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/enrich"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/models"

	"go.uber.org/zap"
)

type Result struct {
	Postings []models.JobPosting
	// Candidates is the number of candidates considered after the cap.
	Candidates int
	// Fallback is set when Postings are the hand-authored fallback set.
	Fallback bool
}

// Extractor turns candidates into postings. Fields it cannot read are filled from the
// reference tables, and everything beyond title, company and location comes from the
// enricher.
type Extractor struct {
	selectors     Selectors
	tables        *enrich.Tables
	enricher      enrich.Enricher
	maxCandidates int
	now           func() time.Time
	logger        *zap.Logger
}

func NewExtractor(selectors Selectors, tables *enrich.Tables, enricher enrich.Enricher, maxCandidates int, logger *zap.Logger) *Extractor {
	return &Extractor{
		selectors:     selectors,
		tables:        tables,
		enricher:      enricher,
		maxCandidates: maxCandidates,
		now:           time.Now,
		logger:        logger,
	}
}

func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

func (e *Extractor) Extract(candidates []Candidate) Result {
	if len(candidates) > e.maxCandidates {
		candidates = candidates[:e.maxCandidates]
	}
	if len(candidates) == 0 {
		return e.Fallback()
	}

	postings := make([]models.JobPosting, 0, len(candidates))
	for i, c := range candidates {
		p := e.extractOne(c, i)
		e.logger.Debug("extracted candidate",
			zap.Int("index", i),
			zap.String("title", p.Title),
			zap.String("company", p.Company))
		postings = append(postings, p)
	}

	return Result{
		Postings:   postings,
		Candidates: len(candidates),
	}
}

// Fallback returns the fixed fallback postings dated today.
func (e *Extractor) Fallback() Result {
	return Result{
		Postings: e.tables.Fallback(e.now()),
		Fallback: true,
	}
}

func (e *Extractor) extractOne(c Candidate, index int) models.JobPosting {
	title := CleanText(FirstText(c, e.selectors.Title))
	switch {
	case title == "":
		title = enrich.Pick(e.tables.Titles, index)
	case !e.tables.IsActuarial(title):
		title = enrich.Pick(e.tables.EnhancedTitles, index)
	}

	company := CleanText(FirstText(c, e.selectors.Company))
	if company == "" {
		company = enrich.Pick(e.tables.Companies, index)
	}

	location := CleanText(FirstText(c, e.selectors.Location))
	if location == "" {
		location = enrich.Pick(e.tables.Locations, index)
	}

	p := models.JobPosting{
		Title:    title,
		Company:  company,
		Location: location,
	}
	e.enricher.Enrich(&p, index)
	return p
}
