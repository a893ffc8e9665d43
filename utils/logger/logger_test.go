package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[(DEBUG|INFO|WARN|ERROR)\] (.*)$`)

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestLogger_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Console: true, Writer: &buf})
	require.NoError(t, err)

	l.Debug("debug message")
	l.Info("info message")
	l.Warning("warn message")
	l.Errorf("error %d", 42)

	out := lines(buf.String())
	require.Len(t, out, 4)

	expected := []struct {
		level string
		msg   string
	}{
		{"DEBUG", "debug message"},
		{"INFO", "info message"},
		{"WARN", "warn message"},
		{"ERROR", "error 42"},
	}
	for i, e := range expected {
		m := linePattern.FindStringSubmatch(out[i])
		require.NotNil(t, m, "line %q does not match the log format", out[i])
		assert.Equal(t, e.level, m[1])
		assert.Equal(t, e.msg, m[2])
	}
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Console: true, Writer: &buf, Level: "warn"})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept")

	out := lines(buf.String())
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "[WARN] kept")

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestLogger_ConsoleDisabled(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Console: false, Writer: &buf})
	require.NoError(t, err)

	l.Info("nowhere")
	assert.Empty(t, buf.String())
}

func TestLogger_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	l, err := New(Config{File: path})
	require.NoError(t, err)
	l.Info("first")
	require.NoError(t, l.Close())

	t.Run("append keeps previous lines", func(t *testing.T) {
		l, err := New(Config{File: path, Append: true})
		require.NoError(t, err)
		l.Info("second")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out := lines(string(data))
		require.Len(t, out, 2)
		assert.Contains(t, out[0], "[INFO] first")
		assert.Contains(t, out[1], "[INFO] second")
	})

	t.Run("truncates by default", func(t *testing.T) {
		l, err := New(Config{File: path})
		require.NoError(t, err)
		l.Info("third")
		require.NoError(t, l.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		out := lines(string(data))
		require.Len(t, out, 1)
		assert.Contains(t, out[0], "[INFO] third")
	})
}

func TestLogger_DualSink(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "dual.log")

	l, err := New(Config{Console: true, Writer: &buf, File: path})
	require.NoError(t, err)
	l.Info("both")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}

func TestInit_ReplacesDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Console: true, Writer: &buf}))
	t.Cleanup(func() { _ = Init(DefaultConfig()) })

	Infof("hello %s", "world")
	Warning("careful")

	out := lines(buf.String())
	require.Len(t, out, 2)
	assert.Contains(t, out[0], "[INFO] hello world")
	assert.Contains(t, out[1], "[WARN] careful")
}
