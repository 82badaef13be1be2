package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, gormLevel("silent"))
	assert.Equal(t, gormlogger.Error, gormLevel("ERROR"))
	assert.Equal(t, gormlogger.Info, gormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, gormLevel("warn"))
	assert.Equal(t, gormlogger.Warn, gormLevel(""))
}

func TestGormLogger_Trace(t *testing.T) {
	stmt := func(sql string) func() (string, int64) {
		return func() (string, int64) { return sql, 3 }
	}

	tests := []struct {
		name     string
		level    string
		slow     float64
		begin    time.Duration
		sql      string
		err      error
		wantMsg  string
		wantNone bool
	}{
		{name: "error", level: "warn", sql: "SELECT 1", err: errors.New("boom"), wantMsg: "gorm query error"},
		{name: "record not found is quiet", level: "warn", sql: "SELECT 1", err: gorm.ErrRecordNotFound, wantNone: true},
		{name: "cancelled", level: "warn", sql: "SELECT 1", err: context.Canceled, wantMsg: "gorm query cancelled"},
		{name: "slow", level: "warn", slow: 0.001, begin: 50 * time.Millisecond, sql: "SELECT 1", wantMsg: "gorm slow query"},
		{name: "statement at info", level: "info", sql: "SELECT 1", wantMsg: "gorm query"},
		{name: "silent", level: "silent", sql: "SELECT 1", err: errors.New("boom"), wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			l := NewGormLogger(zap.New(core), tt.slow, tt.level)

			l.Trace(context.Background(), time.Now().Add(-tt.begin), stmt(tt.sql), tt.err)

			if tt.wantNone {
				assert.Zero(t, logs.Len())
				return
			}
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.wantMsg, logs.All()[0].Message)
		})
	}
}

func TestGormLogger_TruncatesSQL(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), 0, "info")

	long := strings.Repeat("x", maxSQLLength+50)
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return long, 0 }, nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Len(t, fields["sql"], maxSQLLength+3)
	assert.Equal(t, true, fields["sql_truncated"])
}
