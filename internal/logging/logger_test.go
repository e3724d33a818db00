package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func readEntries(t *testing.T, path string) []Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func TestLoggerWritesJSONLines(t *testing.T) {
	project := t.TempDir()
	l := New(project, "sess-1")

	l.Log("INFO", "init", "starting", map[string]any{"session_id": "sess-1"})
	l.Step("llm_call", "analysis completed", map[string]any{"ideas_count": 2}, time.Now().Add(-50*time.Millisecond))
	l.Error("write_skill", "write failed", errors.New("disk full"))

	entries := readEntries(t, l.Path())
	require.Len(t, entries, 3)

	require.Equal(t, "INFO", entries[0].Level)
	require.Equal(t, "init", entries[0].Step)
	require.Equal(t, "sess-1", entries[0].Data["session_id"])

	require.GreaterOrEqual(t, entries[1].DurationMS, int64(50))

	require.Equal(t, "ERROR", entries[2].Level)
	require.Equal(t, "disk full", entries[2].Error)
}

func TestLoggerPathPerSession(t *testing.T) {
	project := t.TempDir()
	a := New(project, "aaa")
	b := New(project, "bbb")
	require.NotEqual(t, a.Path(), b.Path())
	require.Contains(t, a.Path(), "learning-aaa.log")
}
