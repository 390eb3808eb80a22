package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studymate/auth-backend/internal/models"
)

type memoryWriter struct {
	mu   sync.Mutex
	logs []models.SystemLog
}

func (w *memoryWriter) CreateBatch(_ context.Context, logs []models.SystemLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logs = append(w.logs, logs...)
	return nil
}

func (w *memoryWriter) all() []models.SystemLog {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.SystemLog(nil), w.logs...)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestPGHandler_PersistsOnlyErrors(t *testing.T) {
	w := &memoryWriter{}
	h := newPGHandler(w, time.Hour)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("refresh failed",
		"user_id", uint(42),
		"action", "refresh",
		"provider", "kakao",
		"error", "boom",
		"path", "/api/auth/refresh",
	)
	h.Stop()

	logs := w.all()
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "refresh failed", entry.Message)
	assert.Equal(t, "req-1", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, uint(42), *entry.UserID)
	assert.Equal(t, "refresh", entry.Action)
	assert.Equal(t, "kakao", entry.Provider)
	assert.Equal(t, "boom", entry.Error)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, "/api/auth/refresh", extra["path"])
}

func TestPGHandler_FlushesFullBatch(t *testing.T) {
	w := &memoryWriter{}
	h := newPGHandler(w, time.Hour)
	defer h.Stop()

	logger := slog.New(h)
	for i := 0; i < batchSize; i++ {
		logger.Error("failure", "n", i)
	}

	assert.Eventually(t, func() bool { return len(w.all()) == batchSize }, time.Second, 10*time.Millisecond)
}

func TestMultiHandler_FansOut(t *testing.T) {
	var buf bytes.Buffer
	w := &memoryWriter{}
	pg := newPGHandler(w, time.Hour)

	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pg,
	))
	logger.Info("hello")
	logger.Error("oops")
	pg.Stop()

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"msg":"oops"`)
	require.Len(t, w.all(), 1)
	assert.Equal(t, "oops", w.all()[0].Message)
}
