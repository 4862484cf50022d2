package logger_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orders/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	t.Run("writes json lines to the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orders.log")

		log, err := logger.New(logger.Config{Level: "info", Filename: path, MaxSize: 1})
		require.NoError(t, err)

		log.With(zap.String("component", "refund_settlement_job")).
			Info("refund settled", zap.Int64("order_id", 2510180000000000001))
		log.Debug("below level")
		_ = log.Sync() // stdout may not support fsync; the file buffer is flushed regardless

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
		require.Len(t, lines, 1)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "refund settled", entry["msg"])
		assert.Equal(t, "refund_settlement_job", entry["component"])
	})

	t.Run("console only when no file is configured", func(t *testing.T) {
		log, err := logger.New(logger.Config{Level: "debug"})

		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(zap.DebugLevel))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		_, err := logger.New(logger.Config{Level: "loud"})

		require.Error(t, err)
	})
}
