package service

import (
	"context"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/messaging"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/store"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/jobs-api/service")

// Jobs validates requests, stamps timestamps and announces changes around a Store.
type Jobs struct {
	store     store.Store
	publisher messaging.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewJobs(s store.Store, publisher messaging.Publisher, logger *zap.Logger) *Jobs {
	return &Jobs{
		store:     s,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Tests use it to pin timestamps.
func (j *Jobs) WithClock(now func() time.Time) *Jobs {
	j.now = now
	return j
}

func (j *Jobs) List(ctx context.Context, filter query.Filter) ([]*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	filter.Sort = query.ParseSort(string(filter.Sort))
	span.SetAttributes(
		telemetry.String("filter.job_type", filter.JobType),
		telemetry.String("filter.sort", string(filter.Sort)),
	)

	postings, err := j.store.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return postings, nil
}

func (j *Jobs) Get(ctx context.Context, id int64) (*models.JobPosting, error) {
	return j.store.Get(ctx, id)
}

func (j *Jobs) Create(ctx context.Context, req *models.CreateRequest) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	p, err := req.ToPosting(j.timestamp())
	if err != nil {
		return nil, err
	}

	created, err := j.store.Create(ctx, p)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	j.logger.Info("created job posting",
		zap.Int64("id", created.ID),
		zap.String("title", created.Title),
		zap.String("company", created.Company))
	j.publish(ctx, events.JobCreated, created)
	return created, nil
}

func (j *Jobs) Update(ctx context.Context, id int64, req *models.UpdateRequest) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(telemetry.Int64("posting.id", id))

	updated, err := j.store.Update(ctx, id, func(p *models.JobPosting) error {
		if err := req.Apply(p); err != nil {
			return err
		}
		p.UpdatedAt = advance(p.UpdatedAt, j.timestamp())
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	j.logger.Info("updated job posting", zap.Int64("id", id))
	j.publish(ctx, events.JobUpdated, updated)
	return updated, nil
}

func (j *Jobs) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(telemetry.Int64("posting.id", id))

	deleted, err := j.store.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return err
	}

	j.logger.Info("deleted job posting", zap.Int64("id", id))
	j.publish(ctx, events.JobDeleted, deleted)
	return nil
}

// publish never fails the caller; the change is already committed.
func (j *Jobs) publish(ctx context.Context, t events.JobEventType, p *models.JobPosting) {
	event := events.NewJobEvent(t, p.ID, p.Title, p.Company, j.now())
	if err := j.publisher.PublishJobEvent(ctx, event); err != nil {
		j.logger.Warn("failed to publish job event",
			zap.String("type", string(t)),
			zap.Int64("posting_id", p.ID),
			zap.Error(err))
	}
}

// timestamp is the clock truncated to the precision Postgres keeps.
func (j *Jobs) timestamp() time.Time {
	return j.now().UTC().Truncate(time.Microsecond)
}

// advance returns next, or prev+1µs when the clock has not moved past prev.
func advance(prev, next time.Time) time.Time {
	if next.After(prev) {
		return next
	}
	return prev.Add(time.Microsecond)
}
