package vizquery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTrace() (*ExecutionTrace, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)
	return NewExecutionTrace(base), logs
}

func TestNewExecutionTraceAssignsCorrelationID(t *testing.T) {
	trace, _ := newObservedTrace()
	assert.NotEqual(t, "", trace.CorrelationID.String())
}

func TestStageLogsDebugWithStageName(t *testing.T) {
	trace, logs := newObservedTrace()
	trace.Stage("filter", "rows", 3)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "executing stage", entries[0].Message)
}

func TestDoneLogsErrorOnFailure(t *testing.T) {
	trace, logs := newObservedTrace()
	trace.Done(LoggingConfig{}, 0, assertError())
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.ErrorLevel, entries[0].Level)
}

func TestDoneLogsSlowQueryWarning(t *testing.T) {
	trace, logs := newObservedTrace()
	trace.start = time.Now().Add(-time.Hour)
	trace.Done(LoggingConfig{LogSlowQueries: true, SlowQueryThreshold: time.Second}, 5, nil)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestDoneLogsInfoWhenQueryLoggingEnabled(t *testing.T) {
	trace, logs := newObservedTrace()
	trace.Done(LoggingConfig{EnableQueryLogging: true}, 5, nil)
	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
}

func TestDoneIsSilentWhenNoLoggingRequested(t *testing.T) {
	trace, logs := newObservedTrace()
	trace.Done(LoggingConfig{}, 5, nil)
	assert.Len(t, logs.All(), 0)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(LoggingConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNewLoggerBuildsConsoleAndJSON(t *testing.T) {
	l, err := NewLogger(LoggingConfig{Level: "info", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, l)

	l, err = NewLogger(LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func assertError() error {
	return NewInternalError("boom")
}
