package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "recorder", cfg.QueueGroup)
	assert.Equal(t, "localhost:9000", cfg.ClickHouseDSN)
	assert.Equal(t, "actuaryhub", cfg.ClickHouseDatabase)
	assert.Equal(t, time.Hour, cfg.ClickHouseConnMaxLife)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CLICKHOUSE_DSN", "clickhouse:9000?dial_timeout=5s")
	t.Setenv("CLICKHOUSE_MAX_OPEN_CONNS", "3")
	t.Setenv("INSERT_TIMEOUT", "2s")
	t.Setenv("CLICKHOUSE_MAX_IDLE_CONNS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "clickhouse:9000?dial_timeout=5s", cfg.ClickHouseDSN)
	assert.Equal(t, 3, cfg.ClickHouseMaxOpenConns)
	assert.Equal(t, 5, cfg.ClickHouseMaxIdleConns)
	assert.Equal(t, 2*time.Second, cfg.InsertTimeout)
}

func TestLoadConfigRequiresNATS(t *testing.T) {
	t.Setenv("NATS_URL", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
