package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/recorder/internal/store"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/recorder/processor")

// Recorder decodes event payloads and hands them to the sink. Each insert is bounded
// by timeout.
type Recorder struct {
	sink    store.Sink
	timeout time.Duration
	logger  *zap.Logger
}

func NewRecorder(sink store.Sink, timeout time.Duration, logger *zap.Logger) *Recorder {
	return &Recorder{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
	}
}

// RecordJobEvent stores a lifecycle event received on subject.
func (r *Recorder) RecordJobEvent(ctx context.Context, subject string, data []byte) error {
	ctx, span := tracer.Start(ctx, "RecordJobEvent")
	defer span.End()

	var event events.JobEvent
	if err := json.Unmarshal(data, &event); err != nil {
		span.RecordError(err)
		return errors.Validation("body", "malformed job event", err)
	}
	if !event.Type.Valid() {
		return errors.Validation("type", fmt.Sprintf("unknown job event type %q", event.Type), nil)
	}
	if event.Type.Subject() != subject {
		return errors.Validation("type",
			fmt.Sprintf("job event type %q does not match subject %s", event.Type, subject), nil)
	}
	if event.ID == "" {
		return errors.Required("id")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.sink.InsertJobEvent(ctx, event); err != nil {
		span.RecordError(err)
		return err
	}

	r.logger.Debug("recorded job event",
		zap.String("type", string(event.Type)),
		zap.Int64("posting_id", event.PostingID))
	return nil
}

func (r *Recorder) RecordRunReport(ctx context.Context, data []byte) error {
	ctx, span := tracer.Start(ctx, "RecordRunReport")
	defer span.End()

	var report events.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		span.RecordError(err)
		return errors.Validation("body", "malformed run report", err)
	}
	if report.RunID == "" {
		return errors.Required("run_id")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.sink.InsertRunReport(ctx, report); err != nil {
		span.RecordError(err)
		return err
	}

	r.logger.Debug("recorded ingestion run",
		zap.String("run_id", report.RunID),
		zap.Int("submitted", report.Submitted))
	return nil
}
