package scheduler

import (
	"context"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/api"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/models"

	"go.uber.org/zap"
)

type outcome int

const (
	outcomeSubmitted outcome = iota
	outcomeSkipped
	outcomeFailed
)

// submitter checks each posting against everything already stored and creates it when
// no posting shares its title and company. The full listing is fetched per posting,
// so a run costs one list call per candidate.
type submitter struct {
	client api.JobsClient
	logger *zap.Logger
}

func (s *submitter) submit(ctx context.Context, posting *models.JobPosting) outcome {
	ctx, span := tracer.Start(ctx, "submit")
	defer span.End()

	existing, err := s.client.ListJobs(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("could not list existing jobs, submitting without duplicate check",
			zap.String("title", posting.Title),
			zap.Error(err))
	}
	for i := range existing {
		if posting.SameAs(&existing[i]) {
			s.logger.Info("skipped duplicate",
				zap.String("title", posting.Title),
				zap.String("company", posting.Company),
				zap.Int64("existing_id", existing[i].ID))
			return outcomeSkipped
		}
	}

	created, err := s.client.CreateJob(ctx, posting)
	if err != nil {
		if errors.TypeOf(err) != errors.ErrTypeSubmission {
			err = errors.Submission("creating job posting", err)
		}
		span.RecordError(err)
		s.logger.Error("failed to submit job posting",
			zap.String("title", posting.Title),
			zap.String("company", posting.Company),
			zap.Error(err))
		return outcomeFailed
	}

	s.logger.Info("submitted job posting",
		zap.Int64("id", created.ID),
		zap.String("title", posting.Title),
		zap.String("company", posting.Company))
	return outcomeSubmitted
}
