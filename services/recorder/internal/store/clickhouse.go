package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/common/events"
	"github.com/fahadnasir13/actuaryhub-backend/common/telemetry"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("actuaryhub/recorder/store")

// Sink persists decoded events.
type Sink interface {
	InsertJobEvent(ctx context.Context, event events.JobEvent) error
	InsertRunReport(ctx context.Context, report events.RunReport) error
}

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Username        string
	Password        string
	Database        string
}

// Open connects over the native protocol and pings the server. Query parameters on
// the DSN are ignored.
func Open(ctx context.Context, opts Options) (clickhouse.Conn, error) {
	host := strings.SplitN(opts.DSN, "?", 2)[0]

	conn, err := clickhouse.Open(&clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{host},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout:     30 * time.Second,
		MaxOpenConns:    opts.MaxOpenConns,
		MaxIdleConns:    opts.MaxIdleConns,
		ConnMaxLifetime: opts.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create clickhouse connection: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS job_events (
		id          UUID,
		type        LowCardinality(String),
		posting_id  Int64,
		title       String,
		company     String,
		occurred_at DateTime64(6, 'UTC'),
		recorded_at DateTime DEFAULT now()
	) ENGINE = MergeTree
	ORDER BY (occurred_at, posting_id)`,
	`CREATE TABLE IF NOT EXISTS ingestion_runs (
		run_id      UUID,
		source_url  String,
		candidates  UInt32,
		extracted   UInt32,
		submitted   UInt32,
		skipped     UInt32,
		failed      UInt32,
		fallback    Bool,
		started_at  DateTime64(3, 'UTC'),
		duration_ms Int64,
		recorded_at DateTime DEFAULT now()
	) ENGINE = MergeTree
	ORDER BY started_at`,
}

type ClickHouse struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

func NewClickHouse(conn clickhouse.Conn, logger *zap.Logger) *ClickHouse {
	return &ClickHouse{conn: conn, logger: logger}
}

func (c *ClickHouse) CreateTables(ctx context.Context) error {
	for _, ddl := range tables {
		if err := c.conn.Exec(ctx, ddl); err != nil {
			return errors.Storage("creating recorder tables", err)
		}
	}
	c.logger.Info("recorder tables ready")
	return nil
}

func (c *ClickHouse) InsertJobEvent(ctx context.Context, event events.JobEvent) error {
	ctx, span := tracer.Start(ctx, "ClickHouse.InsertJobEvent")
	defer span.End()
	span.SetAttributes(
		telemetry.String("event.type", string(event.Type)),
		telemetry.Int64("posting.id", event.PostingID),
	)

	id, err := uuid.Parse(event.ID)
	if err != nil {
		return errors.Validation("id", "event id must be a uuid", err)
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO job_events (id, type, posting_id, title, company, occurred_at)")
	if err != nil {
		span.RecordError(err)
		return errors.Storage("preparing job event batch", err)
	}
	if err := batch.Append(id, string(event.Type), event.PostingID, event.Title, event.Company, event.OccurredAt); err != nil {
		span.RecordError(err)
		return errors.Storage("appending job event", err)
	}
	if err := batch.Send(); err != nil {
		span.RecordError(err)
		return errors.Storage("inserting job event", err)
	}
	return nil
}

func (c *ClickHouse) InsertRunReport(ctx context.Context, report events.RunReport) error {
	ctx, span := tracer.Start(ctx, "ClickHouse.InsertRunReport")
	defer span.End()
	span.SetAttributes(telemetry.String("run.id", report.RunID))

	id, err := uuid.Parse(report.RunID)
	if err != nil {
		return errors.Validation("run_id", "run id must be a uuid", err)
	}

	batch, err := c.conn.PrepareBatch(ctx, `INSERT INTO ingestion_runs
		(run_id, source_url, candidates, extracted, submitted, skipped, failed, fallback, started_at, duration_ms)`)
	if err != nil {
		span.RecordError(err)
		return errors.Storage("preparing run report batch", err)
	}
	if err := batch.Append(
		id,
		report.SourceURL,
		uint32(report.Candidates),
		uint32(report.Extracted),
		uint32(report.Submitted),
		uint32(report.Skipped),
		uint32(report.Failed),
		report.Fallback,
		report.StartedAt,
		report.DurationMS,
	); err != nil {
		span.RecordError(err)
		return errors.Storage("appending run report", err)
	}
	if err := batch.Send(); err != nil {
		span.RecordError(err)
		return errors.Storage("inserting run report", err)
	}
	return nil
}

func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
