package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"error", slog.LevelError},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"info", slog.LevelInfo},
		{"Debug", slog.LevelDebug},
		{"TRACE", LevelTrace},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"warn filters info", "warn", false, false},
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"trace passes debug", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, "text", &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.wantDebug {
				t.Errorf("debug visible = %v, want %v (buf: %q)", got, tt.wantDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			if got := strings.Contains(buf.String(), "info message"); got != tt.wantInfo {
				t.Errorf("info visible = %v, want %v (buf: %q)", got, tt.wantInfo, buf.String())
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", "json", &buf)
	logger.Log(t.Context(), LevelTrace, "tick", "signals", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("json handler output not parseable: %v (%q)", err, buf.String())
	}
	if entry["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", entry["level"])
	}
	if entry["signals"] != float64(3) {
		t.Errorf("signals = %v, want 3", entry["signals"])
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(t.Context(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}

func readEvents(t *testing.T, dir string) []map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, EventsFile))
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("bad JSONL line %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestEventLog_Writes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	l, err := NewEventLog(dir)
	if err != nil {
		t.Fatalf("NewEventLog: %v", err)
	}
	defer l.Close()

	fields := map[string]any{"outcome": "learned", "score": 0.25}
	l.Log("commit", fields)
	l.Log("commit", map[string]any{"outcome": "recognized"})

	if _, ok := fields["time"]; ok {
		t.Error("Log mutated the caller's map")
	}
	if l.Count() != 2 {
		t.Errorf("Count() = %d, want 2", l.Count())
	}

	events := readEvents(t, dir)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0]["event"] != "commit" || events[0]["outcome"] != "learned" || events[0]["score"] != 0.25 {
		t.Errorf("first event = %v", events[0])
	}
	if _, ok := events[1]["time"]; !ok {
		t.Error("expected time field")
	}

	info, err := os.Stat(filepath.Join(dir, EventsFile))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestEventLog_NilAndClosed(t *testing.T) {
	var nilLog *EventLog
	nilLog.Log("commit", nil)
	if err := nilLog.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}

	l, err := NewEventLog(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	l.Log("after_close", nil)
	if err := l.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if l.Count() != 0 {
		t.Errorf("Count() = %d after close, want 0", l.Count())
	}
}

func TestEventLog_Concurrent(t *testing.T) {
	dir := t.TempDir()
	l, err := NewEventLog(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				l.Log("commit", map[string]any{"worker": i})
			}
		}(i)
	}
	wg.Wait()

	if got := len(readEvents(t, dir)); got != 200 {
		t.Errorf("got %d events, want 200", got)
	}
}
