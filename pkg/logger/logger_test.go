package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, lvl string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(lvl)
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		Init("info")
	})
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(l), &m), l)
		out = append(out, m)
	}
	return out
}

func TestLevelString(t *testing.T) {
	cases := map[string]string{
		"debug":    "debug",
		"WARN":     "warn",
		"warning":  "warn",
		"Error":    "error",
		"fatal":    "fatal",
		"nonsense": "info",
		"":         "info",
	}
	for in, want := range cases {
		Init(in)
		require.Equal(t, want, LevelString(), in)
	}
	Init("info")
}

func TestWarnLevelSuppressesDebugAndInfo(t *testing.T) {
	buf := capture(t, "warn")

	Debugf("debug-%d", 1)
	Infof("info-%d", 2)
	Println("hello")
	Warnf("warn-%d", 3)
	Error("error-4")

	got := lines(t, buf)
	require.Len(t, got, 2)
	require.Equal(t, "warn", got[0]["level"])
	require.Equal(t, "warn-3", got[0]["message"])
	require.Equal(t, "error", got[1]["level"])
	require.Equal(t, "error-4", got[1]["message"])
	require.Contains(t, got[0], "time")
}

func TestPrintlnLogsAtInfo(t *testing.T) {
	buf := capture(t, "info")

	Println("hello", "world")

	got := lines(t, buf)
	require.Len(t, got, 1)
	require.Equal(t, "info", got[0]["level"])
	require.Equal(t, "hello world", got[0]["message"])
}

func TestSetOutputKeepsLevel(t *testing.T) {
	buf := capture(t, "debug")
	Debug("visible")
	require.Len(t, lines(t, buf), 1)
	require.Equal(t, "debug", LevelString())
}
