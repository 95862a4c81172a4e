package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FETCH_DRIVER", "playwright")
	t.Setenv("MAX_CANDIDATES", "25")
	t.Setenv("JOBS_API_URL", "http://localhost:5000/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.JobsAPIURL)
	assert.Equal(t, 25, cfg.MaxCandidates)
	assert.Equal(t, 10*time.Second, cfg.SubmitTimeout)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"FETCH_DRIVER": "selenium"}},
		{name: "zero candidates", env: map[string]string{"FETCH_DRIVER": "http", "MAX_CANDIDATES": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
