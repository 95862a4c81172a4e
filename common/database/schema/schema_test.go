package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPendingSkipsAppliedAndSorts(t *testing.T) {
	migrations := []Migration{
		{Version: 3, Description: "third"},
		{Version: 1, Description: "first"},
		{Version: 2, Description: "second"},
	}
	applied := map[int]time.Time{2: time.Now()}

	pending := Pending(migrations, applied)

	assert.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].Version)
	assert.Equal(t, 3, pending[1].Version)
}

func TestPendingNothingLeft(t *testing.T) {
	migrations := []Migration{{Version: 1}}
	applied := map[int]time.Time{1: time.Now()}

	assert.Empty(t, Pending(migrations, applied))
}
