package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/ingestion/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/ingestion/api")

const maxErrorBody = 512

// JobsClient talks to the jobs API. Every call is bounded by the client timeout.
type JobsClient interface {
	Health(ctx context.Context) error
	ListJobs(ctx context.Context) ([]models.JobPosting, error)
	CreateJob(ctx context.Context, posting *models.JobPosting) (*models.JobPosting, error)
}

type jobsClient struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewJobsClient builds a client for the API rooted at baseURL, e.g. http://localhost:5000/api.
func NewJobsClient(baseURL string, timeout time.Duration, logger *zap.Logger) JobsClient {
	return &jobsClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger,
	}
}

func (c *jobsClient) Health(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Health")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer c.closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return errors.Unavailable(fmt.Sprintf("health check returned status %d", resp.StatusCode), nil)
	}
	return nil
}

func (c *jobsClient) ListJobs(ctx context.Context) ([]models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "ListJobs")
	defer span.End()

	resp, err := c.do(ctx, http.MethodGet, "/jobs", nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer c.closeBody(resp)

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status code", zap.Int("status_code", resp.StatusCode))
		return nil, errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	var postings []models.JobPosting
	if err := json.NewDecoder(resp.Body).Decode(&postings); err != nil {
		span.RecordError(err)
		return nil, errors.Internal("decoding response", err)
	}

	span.SetAttributes(telemetry.Int("postings.count", len(postings)))
	return postings, nil
}

func (c *jobsClient) CreateJob(ctx context.Context, posting *models.JobPosting) (*models.JobPosting, error) {
	ctx, span := tracer.Start(ctx, "CreateJob")
	defer span.End()

	body, err := json.Marshal(posting)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("marshaling job posting", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/jobs", body)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Submission("posting job", err)
	}
	defer c.closeBody(resp)

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, errors.Submission(
			fmt.Sprintf("create rejected with status %d: %s", resp.StatusCode, bytes.TrimSpace(detail)), nil)
	}

	var created models.JobPosting
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		span.RecordError(err)
		return nil, errors.Submission("decoding created job posting", err)
	}
	return &created, nil
}

func (c *jobsClient) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	url := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		cancel()
		return nil, errors.Internal("creating request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		cancel()
		c.logger.Error("failed to execute request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err))
		return nil, errors.Unavailable("executing request", err)
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (c *jobsClient) closeBody(resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		c.logger.Warn("failed to close response body", zap.Error(cerr))
	}
}

// cancelOnClose releases the per-request timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}
