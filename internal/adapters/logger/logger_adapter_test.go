package logger_adapter

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"valuation-service/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	tags     []string
	messages []map[string]interface{}
}

func (f *fakePoster) Post(tag string, message interface{}) error {
	f.tags = append(f.tags, tag)
	f.messages = append(f.messages, message.(port.Fields))
	return nil
}

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(SlogConfig{Writer: &buf, IsJSON: true, Level: slog.LevelDebug})

	l.WithFields(port.Fields{"component": "app"}).Error("boom", errors.New("disk full"), port.Fields{"path": "/tmp/x"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"boom"`)
	assert.Contains(t, out, `"component":"app"`)
	assert.Contains(t, out, `"path":"/tmp/x"`)
	assert.Contains(t, out, "disk full")
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})
	l.Info("quiet", nil)
	l.Debug("quieter", nil)
	assert.Empty(t, buf.String())

	l.Warn("loud", nil)
	assert.Contains(t, buf.String(), "loud")
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("WARNING")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lvl)

	lvl, ok = ParseLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestFluentAdapter(t *testing.T) {
	poster := &fakePoster{}
	a, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	require.NoError(t, err)

	child := a.WithFields(port.Fields{"trace_id": "t-1"})
	child.Debug("dropped", nil)
	child.Error("failed", errors.New("timeout"), port.Fields{"attempt": 1})

	require.Equal(t, []string{"error"}, poster.tags)
	msg := poster.messages[0]
	assert.Equal(t, "t-1", msg["trace_id"])
	assert.Equal(t, "timeout", msg["error"])
	assert.Equal(t, "failed", msg["message"])

	_, err = NewFluentLoggerAdapter(nil, nil)
	assert.Error(t, err)
}

func TestMultilogger(t *testing.T) {
	_, err := NewMultiloggerAdapter()
	assert.Error(t, err)

	p1, p2 := &fakePoster{}, &fakePoster{}
	a1, _ := NewFluentLoggerAdapter(p1, nil)
	a2, _ := NewFluentLoggerAdapter(p2, nil)

	single, err := NewMultiloggerAdapter(a1)
	require.NoError(t, err)
	assert.Same(t, a1, single)

	m, err := NewMultiloggerAdapter(a1, a2)
	require.NoError(t, err)
	m.WithFields(port.Fields{"k": "v"}).Warn("fan out", nil)

	assert.Equal(t, []string{"warn"}, p1.tags)
	assert.Equal(t, []string{"warn"}, p2.tags)
	assert.Equal(t, "v", p2.messages[0]["k"])
}
