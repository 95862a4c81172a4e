package events

import (
	"context"
	"fmt"

	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"
	"github.com/fahadnasir13/actuaryhub-backend/services/recorder/internal/processor"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/recorder/events")

type Handler struct {
	logger     *zap.Logger
	nc         *nats.Conn
	recorder   *processor.Recorder
	queueGroup string
	subs       []*nats.Subscription
}

func NewHandler(logger *zap.Logger, nc *nats.Conn, recorder *processor.Recorder, queueGroup string) *Handler {
	return &Handler{
		logger:     logger,
		nc:         nc,
		recorder:   recorder,
		queueGroup: queueGroup,
	}
}

// RegisterSubscriptions joins the queue group on job lifecycle and ingestion run
// subjects and drops the subscriptions when the app stops.
func (h *Handler) RegisterSubscriptions(lc fx.Lifecycle) error {
	handlers := map[string]nats.MsgHandler{
		events.JobSubjectWildcard: h.handleJobEvent,
		events.IngestionRuns:      h.handleRunReport,
	}

	for subject, handler := range handlers {
		sub, err := h.nc.QueueSubscribe(subject, h.queueGroup, handler)
		if err != nil {
			h.unsubscribeAll()
			return fmt.Errorf("subscribe to %s: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}
	h.logger.Info("registered NATS subscriptions",
		zap.String("queue_group", h.queueGroup),
		zap.Int("subscriptions", len(h.subs)))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return h.unsubscribeAll()
		},
	})
	return nil
}

func (h *Handler) unsubscribeAll() error {
	var firstErr error
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.subs = nil
	return firstErr
}

func (h *Handler) handleJobEvent(msg *nats.Msg) {
	ctx, span := tracer.Start(context.Background(), "handleJobEvent")
	defer span.End()

	if err := h.recorder.RecordJobEvent(ctx, msg.Subject, msg.Data); err != nil {
		span.RecordError(err)
		h.logger.Error("failed to record job event",
			zap.Error(err),
			zap.String("subject", msg.Subject))
	}
}

func (h *Handler) handleRunReport(msg *nats.Msg) {
	ctx, span := tracer.Start(context.Background(), "handleRunReport")
	defer span.End()

	if err := h.recorder.RecordRunReport(ctx, msg.Data); err != nil {
		span.RecordError(err)
		h.logger.Error("failed to record ingestion run",
			zap.Error(err),
			zap.String("subject", msg.Subject))
	}
}
