// Package events defines the NATS wire contract shared by the jobs API, the ingestion
// worker and the recorder.
package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	// JobSubjectPrefix prefixes lifecycle subjects: jobs.created, jobs.updated, jobs.deleted.
	JobSubjectPrefix   = "jobs."
	JobSubjectWildcard = "jobs.*"
	IngestionRuns      = "ingestion.runs"
)

type JobEventType string

const (
	JobCreated JobEventType = "created"
	JobUpdated JobEventType = "updated"
	JobDeleted JobEventType = "deleted"
)

func (t JobEventType) Valid() bool {
	switch t {
	case JobCreated, JobUpdated, JobDeleted:
		return true
	}
	return false
}

// Subject is the NATS subject an event of this type is published on.
func (t JobEventType) Subject() string {
	return JobSubjectPrefix + string(t)
}

type JobEvent struct {
	ID         string       `json:"id"`
	Type       JobEventType `json:"type"`
	PostingID  int64        `json:"posting_id"`
	Title      string       `json:"title"`
	Company    string       `json:"company"`
	OccurredAt time.Time    `json:"occurred_at"`
}

func NewJobEvent(t JobEventType, postingID int64, title, company string, at time.Time) JobEvent {
	return JobEvent{
		ID:         uuid.NewString(),
		Type:       t,
		PostingID:  postingID,
		Title:      title,
		Company:    company,
		OccurredAt: at.UTC(),
	}
}

// RunReport summarizes one ingestion run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	SourceURL  string    `json:"source_url"`
	Candidates int       `json:"candidates"`
	Extracted  int       `json:"extracted"`
	Submitted  int       `json:"submitted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Fallback   bool      `json:"fallback"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}
