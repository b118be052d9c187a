package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerWritesJSON(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", Writer: buf})
	require.NoError(t, err)

	componentLog := Component(log, "pipeline")
	componentLog.Info().Str("url", "https://example.com").Msg("template generated")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "template generated", entry["message"])
	require.Equal(t, "pipeline", entry["component"])
	require.Equal(t, "https://example.com", entry["url"])
	require.Equal(t, "info", entry["level"])
	require.Contains(t, entry, "time")
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "INFO", Writer: buf})
	require.NoError(t, err)

	log.Debug().Msg("this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorField(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", Writer: buf})
	require.NoError(t, err)

	log.Error().Err(errors.New("boom")).Msg("failed")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "boom", entry["error"])
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestLoggerHumanReadable(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{HumanReadable: true, Writer: buf})
	require.NoError(t, err)

	log.Info().Msg("ready")
	require.Contains(t, buf.String(), "ready")
	require.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
