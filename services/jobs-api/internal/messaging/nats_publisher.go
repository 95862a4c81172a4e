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

var tracer = telemetry.GetTracer("actuaryhub/jobs-api/messaging")

// Publisher announces job posting lifecycle changes.
type Publisher interface {
	PublishJobEvent(ctx context.Context, event events.JobEvent) error
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

func (p *natsPublisher) PublishJobEvent(ctx context.Context, event events.JobEvent) error {
	_, span := tracer.Start(ctx, "PublishJobEvent")
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		return errors.Internal("marshaling job event", err)
	}

	subject := event.Type.Subject()
	span.SetAttributes(
		telemetry.String("nats.subject", subject),
		telemetry.Int("message.size", len(data)),
	)

	if err := p.conn.Publish(subject, data); err != nil {
		span.RecordError(err)
		return errors.Unavailable("publishing to NATS", err)
	}

	p.logger.Debug("published job event",
		zap.String("event_id", event.ID),
		zap.Int64("posting_id", event.PostingID),
		zap.String("subject", subject))
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
		}
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when no NATS URL is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishJobEvent(context.Context, events.JobEvent) error { return nil }

func (noopPublisher) Close() {}
