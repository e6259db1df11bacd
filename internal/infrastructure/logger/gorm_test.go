package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level), recorded
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT * FROM lead_commissions", 3 }

	t.Run("query errors logged with the statement", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)

		gl.Trace(ctx, time.Now(), query, errors.New("connection reset"))

		entries := recorded.FilterMessage("query failed").All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "SELECT * FROM lead_commissions", fields["sql"])
		assert.Equal(t, int64(3), fields["rows"])
	})

	t.Run("record not found is not an error", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Error)

		gl.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)

		assert.Zero(t, recorded.Len())
	})

	t.Run("slow queries warn with the threshold", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Warn)

		gl.Trace(ctx, time.Now().Add(-slowQueryThreshold-time.Millisecond), query, nil)

		entries := recorded.FilterMessage("slow query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("silent level suppresses everything", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Silent)

		gl.Trace(ctx, time.Now(), query, errors.New("ignored"))

		assert.Zero(t, recorded.Len())
	})

	t.Run("request ID carried from the context", func(t *testing.T) {
		gl, recorded := newObservedGormLogger(gormlogger.Info)
		tagged := WithRequestID(ctx, "req-456")

		gl.Trace(tagged, time.Now(), query, nil)

		entries := recorded.FilterMessage("query").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-456", entries[0].ContextMap()["request_id"])
	})
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, recorded := newObservedGormLogger(gormlogger.Silent)

	raised := gl.LogMode(gormlogger.Error)
	raised.Error(context.Background(), "migration locked: %s", "timeout")

	// the original keeps its level
	gl.Error(context.Background(), "never seen")
	assert.Equal(t, 1, recorded.Len())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("info"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
