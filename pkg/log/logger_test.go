package log

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopus-ml/hopus/pkg/errors"
)

func TestTestLoggerLevels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", fmt.Errorf("test error"), ErrorCodeKey, ErrorEmptyData)

	require.NotEmpty(t, buffer.String())
	assert.True(t, testLogger.ContainsMessage("debug message"))
	assert.True(t, testLogger.ContainsMessage("info message"))
	assert.True(t, testLogger.ContainsMessage("warning message"))
	assert.True(t, testLogger.ContainsMessage("error message"))
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "test error"))
	assert.True(t, testLogger.ContainsField(ErrorCodeKey, ErrorEmptyData))
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ComponentKey, "preprocessing",
		PipelineStepKey, "drop_outliers",
	)
	contextLogger.Info("Dropped outliers", DroppedRowsKey, 3)

	assert.True(t, testLogger.ContainsField(ComponentKey, "preprocessing"))
	assert.True(t, testLogger.ContainsField(PipelineStepKey, "drop_outliers"))
	assert.True(t, testLogger.ContainsField(DroppedRowsKey, 3.0))
}

func TestTestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")

	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestTestLoggerSetLevel(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)
	named := logger.With(ComponentKey, "evaluation")

	named.Info("named logger message")
	assert.True(t, logger.ContainsField(ComponentKey, "evaluation"))

	logger.SetLevel(LevelError)
	named.Info("suppressed")
	assert.NotContains(t, buffer.String(), "suppressed")

	logger.Clear()
	assert.Empty(t, buffer.String())
}

func TestZerologLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelDebug).With(ComponentKey, "evaluation")

	logger.Info("Cross-validation completed",
		ModelNameKey, "ridge",
		SplitsKey, 5,
		TestLossKey, 0.031,
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Cross-validation completed", entry["message"])
	assert.Equal(t, "evaluation", entry[ComponentKey])
	assert.Equal(t, "ridge", entry[ModelNameKey])
	assert.Equal(t, 5.0, entry[SplitsKey])
	assert.Equal(t, 0.031, entry[TestLossKey])
}

func TestZerologLoggerErrorStack(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo)

	err := errors.NewValueError("Preprocess", "no listings left")
	logger.Error("Preprocessing failed", err, OperationKey, OperationTransform)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Contains(t, entry[ErrAttrKey], "no listings left")
	assert.Equal(t, OperationTransform, entry[OperationKey])
}

func TestZerologLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWarningsAreRoutedToLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	defer SetOutput(&bytes.Buffer{}, false)

	errors.Warn(errors.NewDataConversionWarning("bathrooms", "string", "float64", "unparseable"))

	out := buf.String()
	assert.True(t, strings.Contains(out, "DataConversionWarning"), out)
	assert.Contains(t, out, `"warnings"`)
}

func BenchmarkZerologLogger(b *testing.B) {
	var buf bytes.Buffer
	logger := New(&buf, LevelInfo).With(ComponentKey, "benchmark")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message",
			"iteration", i,
			OperationKey, OperationPredict,
			SamplesKey, 1000,
		)
	}
}
