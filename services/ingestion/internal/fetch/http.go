package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"

	"go.uber.org/zap"
)

const maxPageBytes = 10 << 20

// HTTP fetches raw markup without running scripts.
type HTTP struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

func NewHTTP(userAgent string, timeout time.Duration, logger *zap.Logger) *HTTP {
	return &HTTP{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

func (h *HTTP) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "HTTP.Fetch")
	defer span.End()
	span.SetAttributes(telemetry.String("http.url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		return "", errors.Internal("creating request", err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := h.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", errors.Unavailable("executing request", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			h.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return "", errors.Unavailable(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		span.RecordError(err)
		return "", errors.Unavailable("reading response body", err)
	}
	return string(body), nil
}

func (h *HTTP) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
