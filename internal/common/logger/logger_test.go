package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHelpersAttachRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := L()
	ReplaceGlobal(zap.New(core))
	t.Cleanup(func() { ReplaceGlobal(prev) })

	ctx := WithRequestID(context.Background(), "req-1")
	Info(ctx, "interest sent", zap.Int64("sender_id", 1))
	Warn(context.Background(), "no request id")

	entries := logs.AllUntimed()
	assert.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, int64(1), entries[0].ContextMap()["sender_id"])
	_, ok := entries[1].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestBuild_UnknownLevelFallsBackToInfo(t *testing.T) {
	l := Build(Config{Level: "chatty", Encoding: "console"})

	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestRequestID_Missing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "", RequestID(nil)) //nolint:staticcheck
}
