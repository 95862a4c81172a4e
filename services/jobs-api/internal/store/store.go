package store

import (
	"context"

	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"
)

// Store persists job postings. Faults are returned as STORAGE errors and missing ids as
// NOT_FOUND errors from common/errors.
type Store interface {
	List(ctx context.Context, filter query.Filter) ([]*models.JobPosting, error)
	Get(ctx context.Context, id int64) (*models.JobPosting, error)
	// Create assigns an id and persists p.
	Create(ctx context.Context, p *models.JobPosting) (*models.JobPosting, error)
	// Update loads the posting, passes it to mutate and persists the result atomically.
	// An error from mutate aborts the update and is returned unchanged.
	Update(ctx context.Context, id int64, mutate func(*models.JobPosting) error) (*models.JobPosting, error)
	// Delete removes the posting and returns it as it was.
	Delete(ctx context.Context, id int64) (*models.JobPosting, error)
	Close() error
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)
