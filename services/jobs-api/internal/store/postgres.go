package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/jobs-api/store")

const columns = `id, title, company, location, posting_date, job_type, tags, description, salary, created_at, updated_at`

type Postgres struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgres(db *sql.DB, logger *zap.Logger) *Postgres {
	return &Postgres{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosting(row rowScanner) (*models.JobPosting, error) {
	var (
		p           models.JobPosting
		postingDate time.Time
		tags        pq.StringArray
		description sql.NullString
		salary      sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Title, &p.Company, &p.Location, &postingDate, &p.JobType,
		&tags, &description, &salary, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.PostingDate = models.DateOf(postingDate)
	p.Tags = models.TagsOrEmpty(tags)
	if description.Valid {
		p.Description = &description.String
	}
	if salary.Valid {
		p.Salary = &salary.String
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

func (s *Postgres) List(ctx context.Context, filter query.Filter) ([]*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	where, args, orderBy := filter.SQL()
	stmt := fmt.Sprintf("SELECT %s FROM job_postings %s %s", columns, where, orderBy)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Storage("querying job postings", err)
	}
	defer rows.Close()

	postings := []*models.JobPosting{}
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			span.RecordError(err)
			return nil, errors.Storage("scanning job posting", err)
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, errors.Storage("iterating job postings", err)
	}

	span.SetAttributes(telemetry.Int("result.count", len(postings)))
	return postings, nil
}

func (s *Postgres) Get(ctx context.Context, id int64) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(telemetry.Int64("posting.id", id))

	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM job_postings WHERE id = $1", id)
	p, err := scanPosting(row)
	if err != nil {
		return nil, s.rowError(id, "loading job posting", err)
	}
	return p, nil
}

func (s *Postgres) Create(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Create")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO job_postings (title, company, location, posting_date, job_type, tags, description, salary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+columns,
		p.Title, p.Company, p.Location, p.PostingDate.Time, p.JobType,
		pq.Array(models.TagsOrEmpty(p.Tags)), nullable(p.Description), nullable(p.Salary),
		p.CreatedAt, p.UpdatedAt,
	)

	created, err := scanPosting(row)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Storage("inserting job posting", err)
	}

	span.SetAttributes(telemetry.Int64("posting.id", created.ID))
	return created, nil
}

func (s *Postgres) Update(ctx context.Context, id int64, mutate func(*models.JobPosting) error) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Update")
	defer span.End()
	span.SetAttributes(telemetry.Int64("posting.id", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Storage("beginning update", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !stderrors.Is(err, sql.ErrTxDone) {
			s.logger.Warn("failed to roll back update", zap.Int64("id", id), zap.Error(err))
		}
	}()

	row := tx.QueryRowContext(ctx, "SELECT "+columns+" FROM job_postings WHERE id = $1 FOR UPDATE", id)
	p, err := scanPosting(row)
	if err != nil {
		return nil, s.rowError(id, "locking job posting", err)
	}

	if err := mutate(p); err != nil {
		return nil, err
	}

	row = tx.QueryRowContext(ctx, `
		UPDATE job_postings
		SET title = $2, company = $3, location = $4, posting_date = $5, job_type = $6,
			tags = $7, description = $8, salary = $9, updated_at = $10
		WHERE id = $1
		RETURNING `+columns,
		id, p.Title, p.Company, p.Location, p.PostingDate.Time, p.JobType,
		pq.Array(models.TagsOrEmpty(p.Tags)), nullable(p.Description), nullable(p.Salary), p.UpdatedAt,
	)
	updated, err := scanPosting(row)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Storage("updating job posting", err)
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return nil, errors.Storage("committing update", err)
	}
	return updated, nil
}

func (s *Postgres) Delete(ctx context.Context, id int64) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "Delete")
	defer span.End()
	span.SetAttributes(telemetry.Int64("posting.id", id))

	row := s.db.QueryRowContext(ctx, "DELETE FROM job_postings WHERE id = $1 RETURNING "+columns, id)
	p, err := scanPosting(row)
	if err != nil {
		return nil, s.rowError(id, "deleting job posting", err)
	}
	return p, nil
}

func (s *Postgres) Close() error {
	return s.db.Close()
}

func (s *Postgres) rowError(id int64, action string, err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return notFound(id)
	}
	s.logger.Error("job posting query failed",
		zap.Int64("id", id),
		zap.String("action", action),
		zap.Error(err))
	return errors.Storage(action, err)
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
