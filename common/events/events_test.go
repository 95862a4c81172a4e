package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobEventTypeSubject(t *testing.T) {
	assert.Equal(t, "jobs.created", JobCreated.Subject())
	assert.Equal(t, "jobs.deleted", JobDeleted.Subject())
	assert.True(t, JobUpdated.Valid())
	assert.False(t, JobEventType("archived").Valid())
}

func TestNewJobEventWireFormat(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("EST", -5*3600))
	event := NewJobEvent(JobCreated, 42, "Senior Actuary", "MetLife", at)

	require.NotEmpty(t, event.ID)
	assert.Equal(t, time.UTC, event.OccurredAt.Location())

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "created", decoded["type"])
	assert.Equal(t, float64(42), decoded["posting_id"])
	assert.Equal(t, "2026-03-01T17:00:00Z", decoded["occurred_at"])
}
