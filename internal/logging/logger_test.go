package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "json", "warn")
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("reload failed", "path", "/repo")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "reload failed", rec["msg"])
	assert.Equal(t, "/repo", rec["path"])
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, "xml", "info")
	assert.Error(t, err)

	_, err = New(nil, "text", "loud")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestConsole(t *testing.T) {
	c := NewConsole()
	l := c.Logger(slog.LevelDebug)

	l.Debug("walk", "commits", 3)
	l.Error("boom")

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, strings.Contains(msgs[0].Content, "msg=walk"))
	assert.True(t, strings.Contains(msgs[0].Content, "commits=3"))
	assert.True(t, strings.Contains(msgs[1].Content, "level=ERROR"))
	assert.False(t, msgs[0].Time.IsZero())
}

func TestConsole_PartialWrites(t *testing.T) {
	c := NewConsole()
	_, _ = c.Write([]byte("hel"))
	assert.Empty(t, c.Messages())
	_, _ = c.Write([]byte("lo\nworld\n\n"))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "world", msgs[1].Content)
}

func TestConsole_DropsOldest(t *testing.T) {
	c := NewConsole()
	for i := 0; i < MaxConsoleMessages+5; i++ {
		_, _ = fmt.Fprintf(c, "line %d\n", i)
	}
	msgs := c.Messages()
	require.Len(t, msgs, MaxConsoleMessages)
	assert.Equal(t, "line 5", msgs[0].Content)
	assert.Equal(t, fmt.Sprintf("line %d", MaxConsoleMessages+4), msgs[len(msgs)-1].Content)
}

func TestMulti(t *testing.T) {
	a, b := NewConsole(), NewConsole()
	l := Multi(a.Logger(slog.LevelInfo), b.Logger(slog.LevelInfo), Nop())
	l.Info("both")
	assert.Len(t, a.Messages(), 1)
	assert.Len(t, b.Messages(), 1)
}
