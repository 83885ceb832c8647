package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("bogus"))
}

func TestNewWithConfig_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")

	l, err := NewWithConfig(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		ServiceName:    "user-fixture-service",
		ServiceVersion: "test",
		Environment:    "test",
	})
	require.NoError(t, err)

	l.Info("hello", zap.Int64("id", 1))
	l.Debug("dropped")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
	assert.Contains(t, string(data), `"service":"user-fixture-service"`)
	assert.NotContains(t, string(data), "dropped")
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	WithContext(context.Background(), base).Info("no id")
	WithContext(WithRequestID(context.Background(), "req-1"), base).Info("with id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "request_id")
	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
}

func TestGetRequestID(t *testing.T) {
	assert.Equal(t, "", GetRequestID(context.Background()))
	assert.Equal(t, "abc", GetRequestID(WithRequestID(context.Background(), "abc")))
}

func TestIsSyncNoise(t *testing.T) {
	assert.True(t, IsSyncNoise(nil))
	assert.True(t, IsSyncNoise(errors.New("sync /dev/stdout: invalid argument")))
	assert.False(t, IsSyncNoise(errors.New("disk full")))
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/fixture.v1.UserService/FetchUser"}

	var seen string
	handler := func(ctx context.Context, req any) (any, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	}

	_, err := interceptor(context.Background(), nil, info, handler)
	require.NoError(t, err)
	assert.Len(t, seen, 36)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "from-client"))
	_, err = interceptor(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "from-client", seen)
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), 0.1, "warn")
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm slow query", logs.All()[0].Message)

	gl.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "gorm query error", logs.All()[1].Message)

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}
