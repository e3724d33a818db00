// Package logging writes the per-session learning log: one JSON object per
// line, append-only, never read back by skillforge itself.
package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/dotcommander/skillforge/internal/app"
)

// Entry is one learning-log line.
type Entry struct {
	TS         string         `json:"ts"`
	Level      string         `json:"level"`
	Step       string         `json:"step"`
	Msg        string         `json:"msg"`
	Data       map[string]any `json:"data,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Logger appends entries to a session's learning log file. Write failures
// degrade to an stderr diagnostic; learning must never fail on logging.
type Logger struct {
	path string
}

// New creates a logger for the session, ensuring the log directory exists.
func New(project, sessionID string) *Logger {
	dir := app.LearningLogDir(project)
	if err := os.MkdirAll(dir, 0750); err != nil {
		slog.Default().Warn("create learning log directory failed", "error", err, "dir", dir)
	}
	return &Logger{path: app.LearningLogPath(project, sessionID)}
}

// Path returns the log file location, for surfacing to the user.
func (l *Logger) Path() string {
	return l.path
}

// Log writes a leveled entry.
func (l *Logger) Log(level, step, msg string, data map[string]any) {
	l.write(Entry{
		TS:    time.Now().UTC().Format(time.RFC3339),
		Level: level,
		Step:  step,
		Msg:   msg,
		Data:  data,
	})
}

// Step writes an INFO entry with the elapsed time since start.
func (l *Logger) Step(step, msg string, data map[string]any, start time.Time) {
	l.write(Entry{
		TS:         time.Now().UTC().Format(time.RFC3339),
		Level:      "INFO",
		Step:       step,
		Msg:        msg,
		Data:       data,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// Error writes an ERROR entry carrying the error message.
func (l *Logger) Error(step, msg string, err error) {
	e := Entry{
		TS:    time.Now().UTC().Format(time.RFC3339),
		Level: "ERROR",
		Step:  step,
		Msg:   msg,
	}
	if err != nil {
		e.Error = err.Error()
	}
	l.write(e)
}

func (l *Logger) write(e Entry) {
	line, err := json.Marshal(e)
	if err != nil {
		slog.Default().Warn("marshal learning log entry failed", "error", err)
		return
	}
	line = append(line, '\n')

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) //nolint:gosec // G304: path derived from project dir + session id
	if err != nil {
		slog.Default().Warn("open learning log failed", "error", err, "path", l.path)
		return
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		slog.Default().Warn("write learning log failed", "error", err, "path", l.path)
	}
}
