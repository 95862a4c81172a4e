package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.JobEvent
	err    error
}

func (r *recordingPublisher) PublishJobEvent(_ context.Context, e events.JobEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

func (r *recordingPublisher) Close() {}

func str(s string) *string { return &s }

var frozen = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newJobs() (*Jobs, *recordingPublisher) {
	pub := &recordingPublisher{}
	jobs := NewJobs(store.NewMemory(), pub, zap.NewNop()).
		WithClock(func() time.Time { return frozen })
	return jobs, pub
}

func createReq(title, company string) *models.CreateRequest {
	return &models.CreateRequest{
		Title:       str(title),
		Company:     str(company),
		Location:    str("Hartford, CT"),
		PostingDate: str("2026-10-01"),
		JobType:     str("Remote"),
		Tags:        []string{"Health Insurance", "FSA"},
		Description: str("Lead reserving for group health."),
		Salary:      str("$150,000 - $180,000"),
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	jobs, pub := newJobs()

	created, err := jobs.Create(ctx, createReq("Health Actuary", "Aetna"))
	require.NoError(t, err)

	got, err := jobs.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Health Actuary", got.Title)
	assert.Equal(t, "Aetna", got.Company)
	assert.Equal(t, "Hartford, CT", got.Location)
	assert.Equal(t, "2026-10-01", got.PostingDate.String())
	assert.Equal(t, "Remote", got.JobType)
	assert.Equal(t, []string{"Health Insurance", "FSA"}, got.Tags)
	assert.Equal(t, "Lead reserving for group health.", *got.Description)
	assert.Equal(t, "$150,000 - $180,000", *got.Salary)
	assert.Equal(t, frozen, got.CreatedAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.JobCreated, pub.events[0].Type)
	assert.Equal(t, created.ID, pub.events[0].PostingID)
}

func TestCreateThenGetKeepsSubmittedValues(t *testing.T) {
	ctx := context.Background()
	jobs, _ := newJobs()

	req := createReq(" Health Actuary ", "Aetna")
	req.Tags = []string{"Excel", "", " SQL "}
	req.Description = str("")
	req.Salary = str("")

	created, err := jobs.Create(ctx, req)
	require.NoError(t, err)

	got, err := jobs.Get(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, " Health Actuary ", got.Title)
	assert.Equal(t, []string{"Excel", "", " SQL "}, got.Tags)
	require.NotNil(t, got.Description)
	assert.Equal(t, "", *got.Description)
	require.NotNil(t, got.Salary)
	assert.Equal(t, "", *got.Salary)
}

func TestCreateValidationNamesField(t *testing.T) {
	jobs, pub := newJobs()

	_, err := jobs.Create(context.Background(), &models.CreateRequest{Title: str("Actuary"), Location: str("NYC")})
	de, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrTypeValidation, de.Type)
	assert.Equal(t, "company", de.Field)

	req := createReq("Actuary", "MetLife")
	req.PostingDate = str("not-a-date")
	_, err = jobs.Create(context.Background(), req)
	assert.True(t, errors.IsValidation(err))

	assert.Empty(t, pub.events)
}

func TestPartialUpdateAdvancesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	jobs, _ := newJobs()

	created, err := jobs.Create(ctx, createReq("Pricing Actuary", "Allstate"))
	require.NoError(t, err)

	updated, err := jobs.Update(ctx, created.ID, &models.UpdateRequest{Salary: models.StringValue("X")})
	require.NoError(t, err)

	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Company, updated.Company)
	assert.Equal(t, created.Location, updated.Location)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, "X", *updated.Salary)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt), "clock is frozen, updated_at must still advance")
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	again, err := jobs.Update(ctx, created.ID, &models.UpdateRequest{})
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(updated.UpdatedAt))
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	jobs, pub := newJobs()

	_, err := jobs.Update(ctx, 404, &models.UpdateRequest{Salary: models.StringValue("X")})
	assert.True(t, errors.IsNotFound(err))

	created, err := jobs.Create(ctx, createReq("Pricing Actuary", "Allstate"))
	require.NoError(t, err)

	_, err = jobs.Update(ctx, created.ID, &models.UpdateRequest{PostingDate: str("yesterday")})
	assert.True(t, errors.IsValidation(err))

	got, err := jobs.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
	assert.Len(t, pub.events, 1)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	jobs, pub := newJobs()

	created, err := jobs.Create(ctx, createReq("Pricing Actuary", "Allstate"))
	require.NoError(t, err)

	require.NoError(t, jobs.Delete(ctx, created.ID))
	_, err = jobs.Get(ctx, created.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(jobs.Delete(ctx, created.ID)))

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.JobDeleted, pub.events[1].Type)
	assert.Equal(t, "Allstate", pub.events[1].Company)
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	jobs, pub := newJobs()
	pub.err = errors.Unavailable("nats down", nil)

	created, err := jobs.Create(context.Background(), createReq("Pricing Actuary", "Allstate"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestListFiltersAndDefaultsSort(t *testing.T) {
	ctx := context.Background()
	jobs, _ := newJobs()

	for _, req := range []*models.CreateRequest{
		createReq("Senior Health Actuary", "Aetna"),
		createReq("Pricing Actuary", "Allstate"),
	} {
		_, err := jobs.Create(ctx, req)
		require.NoError(t, err)
	}
	onsite := createReq("Health Analyst", "Humana")
	onsite.JobType = str("Full-time")
	_, err := jobs.Create(ctx, onsite)
	require.NoError(t, err)

	got, err := jobs.List(ctx, query.Filter{JobType: "Remote", Keyword: "health", Sort: "unknown"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Aetna", got[0].Company)
}

func TestAdvance(t *testing.T) {
	prev := frozen
	assert.Equal(t, prev.Add(time.Second), advance(prev, prev.Add(time.Second)))
	assert.Equal(t, prev.Add(time.Microsecond), advance(prev, prev))
	assert.Equal(t, prev.Add(time.Microsecond), advance(prev, prev.Add(-time.Hour)))
}
