package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// resetGlobal restores the package state around a test that calls Init
func resetGlobal(t *testing.T) {
	t.Helper()
	prev := globalLogger
	globalLogger = nil
	once = sync.Once{}
	t.Cleanup(func() {
		globalLogger = prev
		once = sync.Once{}
	})
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init(Config{Level: "error", Format: "json"}))
	first := Get()
	require.NoError(t, Init(Config{Level: "debug", Format: "text"}))

	assert.Same(t, first, Get())
	assert.False(t, Get().Core().Enabled(zapcore.WarnLevel))
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	resetGlobal(t)

	require.NoError(t, Init(Config{Level: "loud", Format: "json"}))
	assert.True(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
}

func TestGet_NopBeforeInit(t *testing.T) {
	resetGlobal(t)

	assert.NotNil(t, Get())
	assert.NotPanics(t, func() {
		Info("not initialized")
		WithReport("r1").Warn("still fine")
	})
	assert.NoError(t, Sync())
}

func TestTextLogger_RendersContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := buildTextLogger(zapcore.InfoLevel, Config{}, zapcore.AddSync(&buf))

	log.With(zap.String(FieldReportID, "r1")).
		With(zap.String(FieldSessionID, "s1")).
		Info("Status changed", zap.String("status", "generated"), zap.Duration("took", 1500*time.Millisecond))

	line := buf.String()
	assert.Contains(t, line, "Status changed")
	assert.Contains(t, line, "report_id=r1 session_id=s1 status=generated took=1.5s")
	assert.Contains(t, line, "[INFO]")
}

func TestTextLogger_ContextDoesNotLeakToParent(t *testing.T) {
	var buf bytes.Buffer
	log := buildTextLogger(zapcore.InfoLevel, Config{}, zapcore.AddSync(&buf))

	_ = log.With(zap.String(FieldReportID, "r1"))
	log.Info("plain")

	assert.NotContains(t, buf.String(), "report_id")
}

func TestTextLogger_WritesUncoloredFile(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "adreport.log")
	log := buildTextLogger(zapcore.InfoLevel, Config{File: path, MaxSize: 1}, zapcore.AddSync(&console))

	log.Error("Fetch failed", zap.Error(errors.New("timeout")))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR] ")
	assert.Contains(t, string(data), "error=timeout")
	assert.NotContains(t, string(data), "\x1b[")
	assert.Contains(t, console.String(), "\x1b[31m[ERROR]")
}

func TestJSONLogger_IncludesReportID(t *testing.T) {
	var buf bytes.Buffer
	log := buildJSONLogger(zapcore.DebugLevel, Config{}, zapcore.AddSync(&buf))

	log.With(zap.String(FieldReportID, "r9")).Debug("Polling started", zap.Int("polls", 3))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "r9", entry[FieldReportID])
	assert.Equal(t, "debug", entry["level"])
	assert.EqualValues(t, 3, entry["polls"])
	assert.Contains(t, entry, "timestamp")
}

func TestRotatingFile_UnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	assert.Nil(t, rotatingFile(Config{File: filepath.Join(blocker, "sub", "x.log")}))
	assert.Nil(t, rotatingFile(Config{}))
}

func TestWithSession(t *testing.T) {
	resetGlobal(t)
	var buf bytes.Buffer
	globalLogger = buildTextLogger(zapcore.InfoLevel, Config{}, zapcore.AddSync(&buf))

	WithSession("s1", "r1").Info("Opened")
	WithReport("").Info("Untagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "report_id=r1 session_id=s1")
	assert.NotContains(t, lines[1], "report_id")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseLevel("verbose")
	assert.Error(t, err)
}
