package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PJ2-group2/HabitLink-sub000/internal/config"
	"github.com/PJ2-group2/HabitLink-sub000/internal/platform/logger"
)

func testServerConfig(level string) config.ServerConfig {
	return config.ServerConfig{Port: 8080, LogLevel: level}
}

func TestSetupLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
	}{
		{"debug level enables debug records", "debug", true},
		{"info level suppresses debug records", "info", false},
		{"warn level suppresses debug records", "warn", false},
		{"invalid level falls back to info", "verbose", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.Setup(testServerConfig(tt.level))
			require.NoError(t, err)

			assert.Equal(t, tt.wantDebug, log.Enabled(context.Background(), slog.LevelDebug))
		})
	}
}

func TestContextCarry(t *testing.T) {
	t.Parallel()

	buf, log := logger.SetupTestLogger(t, nil)

	ctx := logger.WithLogger(context.Background(), log)
	logger.FromContext(ctx).Info("carried", "key", "value")

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "carried", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
}

func TestFromContextFallsBack(t *testing.T) {
	t.Parallel()

	fallback := slog.Default()

	assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, logger.FromContext(context.Background()))
}
