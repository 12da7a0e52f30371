package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "file:gameplan.db?_foreign_keys=on", cfg.SQLiteDSN)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GAMEPLAN_HTTP_PORT", "9090")
	t.Setenv("GAMEPLAN_SQLITE_DSN", "file:test.db?_foreign_keys=on")
	t.Setenv("GAMEPLAN_SESSION_TTL", "2h")
	t.Setenv("GAMEPLAN_LOG_LEVEL", "debug")
	t.Setenv("GAMEPLAN_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "file:test.db?_foreign_keys=on", cfg.SQLiteDSN)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port not a number", key: "GAMEPLAN_HTTP_PORT", value: "eighty"},
		{name: "port out of range", key: "GAMEPLAN_HTTP_PORT", value: "70000"},
		{name: "negative ttl", key: "GAMEPLAN_SESSION_TTL", value: "-1h"},
		{name: "garbage ttl", key: "GAMEPLAN_SESSION_TTL", value: "soon"},
		{name: "unknown log level", key: "GAMEPLAN_LOG_LEVEL", value: "verbose"},
		{name: "zero shutdown timeout", key: "GAMEPLAN_SHUTDOWN_TIMEOUT", value: "0s"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestLoadCollectsEveryInvalidValue(t *testing.T) {
	t.Setenv("GAMEPLAN_HTTP_PORT", "not-a-port")
	t.Setenv("GAMEPLAN_SESSION_TTL", "never")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GAMEPLAN_HTTP_PORT")
	assert.Contains(t, err.Error(), "GAMEPLAN_SESSION_TTL")
}

func TestParseLogLevelAliases(t *testing.T) {
	level, err := parseLogLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
