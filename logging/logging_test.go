package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reported struct {
	err    error
	msg    string
	fields map[string]any
}

func TestRollbarHandlerReportsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	var got []reported
	handler := &rollbarHandler{
		next: slog.NewJSONHandler(&buf, nil),
		report: func(_ slog.Level, err error, msg string, fields map[string]any) {
			got = append(got, reported{err: err, msg: msg, fields: fields})
		},
	}
	logger := slog.New(handler).With("tenant", "ccs")

	logger.Info("clock event recorded", "studentId", "s1")
	logger.Error("failed to record attendance", "error", errors.New("db down"), "studentId", "s1")

	require.Len(t, got, 1)
	assert.Equal(t, "failed to record attendance", got[0].msg)
	assert.EqualError(t, got[0].err, "db down")
	assert.Equal(t, "ccs", got[0].fields["tenant"])
	assert.Equal(t, "s1", got[0].fields["studentId"])

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "ccs", entry["tenant"])
}

func TestSetupWithoutRollbar(t *testing.T) {
	var buf bytes.Buffer
	logger := setup(&buf, Options{Level: slog.LevelWarn})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	_, isRollbar := logger.Handler().(*rollbarHandler)
	assert.False(t, isRollbar)
}
