package scheduler

import (
	"context"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/api"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/extract"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/fetch"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/messaging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/ingestion/scheduler")

type RunStats struct {
	RunID      string
	Candidates int
	Extracted  int
	Submitted  int
	Skipped    int
	Failed     int
	Fallback   bool
	StartedAt  time.Time
	Duration   time.Duration
}

func (s *RunStats) Report(sourceURL string) events.RunReport {
	return events.RunReport{
		RunID:      s.RunID,
		SourceURL:  sourceURL,
		Candidates: s.Candidates,
		Extracted:  s.Extracted,
		Submitted:  s.Submitted,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		Fallback:   s.Fallback,
		StartedAt:  s.StartedAt,
		DurationMS: s.Duration.Milliseconds(),
	}
}

// Ingestor performs one fetch, extract and submit pass over the source page.
type Ingestor struct {
	fetcher            fetch.Fetcher
	extractor          *extract.Extractor
	submitter          *submitter
	client             api.JobsClient
	publisher          messaging.Publisher
	sourceURL          string
	candidateSelectors []string
	logger             *zap.Logger
	now                func() time.Time
}

func NewIngestor(
	fetcher fetch.Fetcher,
	extractor *extract.Extractor,
	client api.JobsClient,
	publisher messaging.Publisher,
	sourceURL string,
	candidateSelectors []string,
	logger *zap.Logger,
) *Ingestor {
	return &Ingestor{
		fetcher:            fetcher,
		extractor:          extractor,
		submitter:          &submitter{client: client, logger: logger},
		client:             client,
		publisher:          publisher,
		sourceURL:          sourceURL,
		candidateSelectors: candidateSelectors,
		logger:             logger,
		now:                time.Now,
	}
}

// Run never fails on per-candidate faults. It returns an error only when ctx ends
// before every posting was handled; the partial stats are returned with it.
func (i *Ingestor) Run(ctx context.Context) (*RunStats, error) {
	ctx, span := tracer.Start(ctx, "Ingestor.Run")
	defer span.End()

	stats := &RunStats{
		RunID:     uuid.NewString(),
		StartedAt: i.now().UTC(),
	}
	logger := i.logger.With(zap.String("run_id", stats.RunID))
	logger.Info("starting ingestion run", zap.String("source_url", i.sourceURL))

	if err := i.client.Health(ctx); err != nil {
		logger.Warn("jobs api health check failed, continuing", zap.Error(err))
	}

	result := i.extract(ctx, logger)
	stats.Candidates = result.Candidates
	stats.Extracted = len(result.Postings)
	stats.Fallback = result.Fallback

	var runErr error
	for idx := range result.Postings {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		switch i.submitter.submit(ctx, &result.Postings[idx]) {
		case outcomeSubmitted:
			stats.Submitted++
		case outcomeSkipped:
			stats.Skipped++
		case outcomeFailed:
			stats.Failed++
		}
	}
	stats.Duration = i.now().Sub(stats.StartedAt)

	span.SetAttributes(
		telemetry.Int("run.candidates", stats.Candidates),
		telemetry.Int("run.submitted", stats.Submitted),
		telemetry.Int("run.skipped", stats.Skipped),
		telemetry.Int("run.failed", stats.Failed),
		telemetry.Bool("run.fallback", stats.Fallback),
	)
	logger.Info("ingestion run finished",
		zap.Int("candidates", stats.Candidates),
		zap.Int("extracted", stats.Extracted),
		zap.Int("submitted", stats.Submitted),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Bool("fallback", stats.Fallback),
		zap.Duration("duration", stats.Duration))

	if err := i.publisher.PublishRunReport(context.WithoutCancel(ctx), stats.Report(i.sourceURL)); err != nil {
		logger.Warn("failed to publish run report", zap.Error(err))
	}

	if runErr != nil {
		span.RecordError(runErr)
	}
	return stats, runErr
}

// extract never fails: fetch and parse faults are recovered with the fallback postings.
func (i *Ingestor) extract(ctx context.Context, logger *zap.Logger) extract.Result {
	page, err := i.fetcher.Fetch(ctx, i.sourceURL)
	if err != nil {
		logger.Warn("using fallback postings",
			zap.Error(errors.Extraction("fetching source page", err)))
		return i.extractor.Fallback()
	}

	candidates, selector, err := extract.ParseCandidates(page, i.candidateSelectors)
	if err != nil {
		logger.Warn("using fallback postings",
			zap.Error(errors.Extraction("parsing source page", err)))
		return i.extractor.Fallback()
	}
	if len(candidates) == 0 {
		logger.Warn("using fallback postings",
			zap.Error(errors.Extraction("no candidate elements found", nil)))
		return i.extractor.Fallback()
	}

	logger.Info("found candidate elements",
		zap.Int("count", len(candidates)),
		zap.String("selector", selector))
	return i.extractor.Extract(candidates)
}
