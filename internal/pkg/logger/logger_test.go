package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return newLogger("production", zapcore.AddSync(&buf)), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestLog_WritesKeyValues(t *testing.T) {
	l, buf := captureLogger(t)
	l.log(INFO, "batch done", "imported", 2, "total", 3, "source", "json")

	entry := decodeLine(t, buf)
	assert.Equal(t, "batch done", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, float64(2), entry["imported"])
	assert.Equal(t, "json", entry["source"])
}

func TestLog_RedactsEmails(t *testing.T) {
	l, buf := captureLogger(t)
	l.log(WARN, "login failed", "email", "john.doe@example.com", "detail", "user ab@example.com rejected")

	entry := decodeLine(t, buf)
	assert.Equal(t, "jo***@example.com", entry["email"])
	assert.Equal(t, "user ***@example.com rejected", entry["detail"])
}

func TestLog_ErrorValues(t *testing.T) {
	l, buf := captureLogger(t)
	l.log(ERROR, "write failed", "error", errors.New("connection refused"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "connection refused", entry["error"])
}

func TestLog_RespectsLevel(t *testing.T) {
	l, buf := captureLogger(t)
	l.log(DEBUG, "hidden")
	assert.Empty(t, buf.String())

	l.level.SetLevel(DEBUG.zapLevel())
	l.log(DEBUG, "shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARNING "))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("verbose"))
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "jo***@example.com", RedactEmail("john.doe@example.com"))
	assert.Equal(t, "***@example.com", RedactEmail("ab@example.com"))
	assert.Equal(t, "***@local", RedactEmail("dev@local"))
	assert.Equal(t, "import-worker", RedactEmail("import-worker"))
	assert.Equal(t, "***@***", RedactEmail("a@b@c"))
}

func TestLog_RedactsActorsAndOAuthValues(t *testing.T) {
	l, buf := captureLogger(t)
	l.log(INFO, "catalog import finished",
		"actor", "admin@school.org",
		"created_by", " lehrer@school.org ",
		"state", "xyz",
		"code", "4/0Ab-secret",
		"status", "done",
		"batch_id", "import-1",
	)

	entry := decodeLine(t, buf)
	assert.Equal(t, "ad***@school.org", entry["actor"])
	assert.Equal(t, "le***@school.org", entry["created_by"])
	assert.Equal(t, "[redacted]", entry["state"])
	assert.Equal(t, "[redacted]", entry["code"])
	assert.Equal(t, "done", entry["status"])
	assert.Equal(t, "import-1", entry["batch_id"])
}

func TestLog_RedactionCanBeDisabled(t *testing.T) {
	l, buf := captureLogger(t)
	l.redactPII = false
	l.log(INFO, "login", "email", "admin@school.org")

	assert.Equal(t, "admin@school.org", decodeLine(t, buf)["email"])
}
