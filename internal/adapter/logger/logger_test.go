package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger_WritesEntry(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithLevel("simulator", LevelDebug, &buf)

	lgr.Error("order_dropped", "Order dropped", "req-1", map[string]interface{}{"shelf": "overflow"}, errors.New("no capacity"))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "simulator", entry.Service)
	assert.Equal(t, "order_dropped", entry.Action)
	assert.Equal(t, "req-1", entry.RequestID)
	assert.Equal(t, "overflow", entry.Details["shelf"])
	require.NotNil(t, entry.Error)
	assert.Equal(t, "no capacity", entry.Error.Msg)
}

func TestJSONLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithLevel("kitchen", ParseLevel("info"), &buf)

	lgr.Debug("noise", "dropped", "", nil)
	lgr.Info("kept", "kept", "", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"action":"kept"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}
