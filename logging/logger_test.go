package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"Error", LogLevelError, false},
		{"loud", LogLevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf, Attrs: map[string]any{"component": "test"}})

	l.Debug("hidden")
	l.Info("agent.start", "agent", "lead")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"agent.start"`)
	assert.Contains(t, out, `"agent":"lead"`)
	assert.Contains(t, out, `"component":"test"`)
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "text", Output: &buf})
	l.Debug("delegate.batch.start", "size", 2)
	assert.Contains(t, buf.String(), "msg=delegate.batch.start")
	assert.Contains(t, buf.String(), "size=2")
}

type capture struct{ args [][]any }

func (c *capture) Debug(_ string, args ...any) { c.args = append(c.args, args) }
func (c *capture) Info(_ string, args ...any)  { c.args = append(c.args, args) }
func (c *capture) Warn(_ string, args ...any)  { c.args = append(c.args, args) }
func (c *capture) Error(_ string, args ...any) { c.args = append(c.args, args) }

func TestWith(t *testing.T) {
	c := &capture{}
	l := With(c, "agent", "x")
	l.Info("m", "step", 1)
	require.Len(t, c.args, 1)
	assert.Equal(t, []any{"step", 1, "agent", "x"}, c.args[0])

	var buf bytes.Buffer
	sl := With(NewLogger(&LoggerConfig{Output: &buf}), "agent", "y")
	sl.Info("m")
	assert.Contains(t, buf.String(), `"agent":"y"`)

	assert.IsType(t, NoOpLogger{}, With(nil))
	assert.IsType(t, NoOpLogger{}, With(NoOpLogger{}, "k", "v"))
}

func TestLogHelpers(t *testing.T) {
	c := &capture{}
	LogToolCall(c, "echo", time.Millisecond, nil)
	LogToolCall(c, "echo", time.Millisecond, errors.New("boom"))
	LogModelCall(c, "mock", time.Millisecond, nil)
	LogModelCall(c, "mock", time.Millisecond, errors.New("down"))
	assert.Len(t, c.args, 4)
	assert.Contains(t, c.args[1], "boom")
}
