package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case
		{"Debug", LevelDebug},
		{"Info", LevelInfo},
		{"Warn", LevelWarn},
		{"Warning", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty string defaults to Info
		{"", LevelInfo},

		// Unrecognized defaults to Info
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
		{"unknown", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Format: FormatJSON, Output: &buf})

	logger.Debug("dispatching", "protocol", "COAP")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "dispatching", record["msg"])
	assert.Equal(t, "COAP", record["protocol"])
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Format: FormatText, Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOpen_TeesToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "omnisend.log")

	logger, closer, err := Open(Config{Level: LevelInfo, Output: &buf, File: path})
	require.NoError(t, err)

	logger.Info("published", "topic", "sensors/temp")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"topic":"sensors/temp"`))
	assert.Contains(t, buf.String(), "topic=sensors/temp")
}

func TestTeeHandler_ReportsFileFailure(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "omnisend.log")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	h := newTeeHandler(
		slog.NewTextHandler(&console, nil),
		slog.NewJSONHandler(f, nil),
	).WithAttrs([]slog.Attr{slog.String("component", "mqtt")})

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "published", 0)
	err = h.Handle(context.Background(), r)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "log file")
	assert.NotContains(t, err.Error(), "console log")
	assert.Contains(t, console.String(), "component=mqtt")
	assert.Contains(t, console.String(), "published")
}

func TestTeeHandler_Enabled(t *testing.T) {
	warn := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	debug := slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})

	tests := []struct {
		name  string
		h     *teeHandler
		level slog.Level
		want  bool
	}{
		{"either sink enabled", newTeeHandler(warn, debug), slog.LevelDebug, true},
		{"neither sink enabled", newTeeHandler(warn, warn), slog.LevelInfo, false},
		{"both sinks enabled", newTeeHandler(warn, debug), slog.LevelError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.h.Enabled(context.Background(), tt.level))
		})
	}
}

func TestOpen_NoFile(t *testing.T) {
	logger, closer, err := Open(Config{Output: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}

func TestNop(t *testing.T) {
	Nop().Error("discarded")
}

func TestIsValidLevelAndFormat(t *testing.T) {
	for _, s := range []string{"debug", "INFO", "", "Warn", "warning", "error"} {
		assert.True(t, IsValidLevel(s), s)
	}
	for _, s := range []string{"verbose", "trace", "fatal"} {
		assert.False(t, IsValidLevel(s), s)
	}
	for _, s := range []string{"text", "JSON", ""} {
		assert.True(t, IsValidFormat(s), s)
	}
	assert.False(t, IsValidFormat("xml"))
}
