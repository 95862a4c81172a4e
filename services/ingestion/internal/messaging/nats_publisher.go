package messaging

import (
	"context"
	"encoding/json"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/ingestion/messaging")

type Publisher interface {
	PublishRunReport(ctx context.Context, report events.RunReport) error
	Close()
}

type natsPublisher struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func NewPublisher(conn *nats.Conn, logger *zap.Logger) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger,
	}
}

func (p *natsPublisher) PublishRunReport(ctx context.Context, report events.RunReport) error {
	_, span := tracer.Start(ctx, "PublishRunReport")
	defer span.End()

	data, err := json.Marshal(report)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling run report", err)
	}

	span.SetAttributes(
		telemetry.String("nats.subject", events.IngestionRuns),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(events.IngestionRuns, data); err != nil {
		span.RecordError(err)
		return errors.Unavailable("publishing to NATS", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		span.RecordError(err)
		return errors.Unavailable("flushing NATS connection", err)
	}

	p.logger.Debug("published run report",
		zap.String("run_id", report.RunID),
		zap.String("subject", events.IngestionRuns))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when no NATS URL is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishRunReport(context.Context, events.RunReport) error { return nil }

func (noopPublisher) Close() {}
