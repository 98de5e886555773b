package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunCmd_DrawRecognizesPattern(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "run", "--ticks", "10", "--draw", "square", "--seed", "3", "--json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	result := decodeJSON(t, out)

	commit, ok := result["commit"].(map[string]any)
	if !ok {
		t.Fatalf("missing commit in %v", result)
	}
	if commit["outcome"] != "recognized" || commit["label"] != "SQUARE" {
		t.Errorf("commit = %v, want recognized SQUARE", commit)
	}
	stats := result["stats"].(map[string]any)
	if stats["ticks"] != float64(10) {
		t.Errorf("ticks = %v, want 10", stats["ticks"])
	}
	if stats["recognized"] != float64(1) {
		t.Errorf("recognized = %v, want 1", stats["recognized"])
	}
	if result["seed"] != float64(3) {
		t.Errorf("seed = %v, want 3", result["seed"])
	}
}

func TestRunCmd_TextOutput(t *testing.T) {
	isolateHome(t)

	out, err := execute(t, "run", "--ticks", "4", "--draw", "CROSS", "--seed", "1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"seed 1", "Commit: recognized CROSS", "Fired:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunCmd_Validation(t *testing.T) {
	isolateHome(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"draw and stroke", []string{"run", "--draw", "SQUARE", "--stroke", "1,2"}, "mutually exclusive"},
		{"unknown pattern", []string{"run", "--ticks", "2", "--draw", "HEXAGON"}, "unknown pattern"},
		{"non-sensory stroke", []string{"run", "--ticks", "2", "--stroke", "0,100000"}, "stroke point 2"},
		{"negative ticks", []string{"run", "--ticks=-1"}, "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRunCmd_JournalAndEvents(t *testing.T) {
	home := isolateHome(t)
	dbPath := filepath.Join(home, "journal.db")
	t.Setenv("NEUROSIM_JOURNAL", "1")
	t.Setenv("NEUROSIM_JOURNAL_PATH", dbPath)
	t.Setenv("NEUROSIM_EVENTS", "1")

	if _, err := execute(t, "run", "--ticks", "6", "--draw", "TRIANGLE", "--seed", "5"); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, err := execute(t, "journal", "list", "--json")
	if err != nil {
		t.Fatalf("journal list: %v", err)
	}
	listed := decodeJSON(t, out)
	if listed["count"] != float64(1) {
		t.Fatalf("count = %v, want 1", listed["count"])
	}
	event := listed["events"].([]any)[0].(map[string]any)
	if event["kind"] != "recognized" || event["label"] != "TRIANGLE" {
		t.Errorf("event = %v", event)
	}

	out, err = execute(t, "journal", "runs", "--json")
	if err != nil {
		t.Fatalf("journal runs: %v", err)
	}
	runs := decodeJSON(t, out)["runs"].([]any)
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	run := runs[0].(map[string]any)
	if run["ticks"] != float64(6) || run["seed"] != float64(5) || run["ended_at"] == nil {
		t.Errorf("run = %v", run)
	}

	out, err = execute(t, "journal", "stats")
	if err != nil {
		t.Fatalf("journal stats: %v", err)
	}
	if !strings.Contains(out, "recognized") {
		t.Errorf("stats output = %q", out)
	}

	data, err := os.ReadFile(filepath.Join(home, ".neurosim", "events.jsonl"))
	if err != nil {
		t.Fatalf("reading event log: %v", err)
	}
	if !strings.Contains(string(data), `"event":"commit"`) || !strings.Contains(string(data), "TRIANGLE") {
		t.Errorf("event log = %s", data)
	}
}

func TestJournalCmd_EmptyPath(t *testing.T) {
	home := isolateHome(t)
	cfgPath := filepath.Join(home, "cfg.yaml")
	if err := os.WriteFile(cfgPath, []byte("journal:\n  path: \"\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "journal", "list", "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "journal.path") {
		t.Errorf("err = %v, want journal.path error", err)
	}
}
