package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

// journals runs each test against both implementations.
func journals(t *testing.T) map[string]Journal {
	t.Helper()
	sqlite, err := NewSQLiteJournal(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Journal{
		"sqlite": sqlite,
		"memory": NewInMemoryJournal(),
	}
}

func TestJournal_RecordAndQuery(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := j.StartRun(ctx, Run{ID: "run-a", Seed: 1, Neurons: 800}); err != nil {
				t.Fatalf("StartRun: %v", err)
			}
			if err := j.StartRun(ctx, Run{ID: "run-b", Seed: 2, Neurons: 400}); err != nil {
				t.Fatalf("StartRun: %v", err)
			}

			events := []Event{
				{RunID: "run-a", Kind: "rejected", ConceptID: -1, Points: 2},
				{RunID: "run-a", Kind: "learned", ConceptID: 426, Label: "LEARNED_426", Points: 27, Spread: 110.3, Score: 0.16, Tick: 40},
				{RunID: "run-a", Kind: "recognized", ConceptID: 426, Label: "LEARNED_426", Score: 1, Tick: 90},
				{RunID: "run-b", Kind: "recognized", ConceptID: 425, Label: "CIRCLE", Score: 1},
			}
			for _, e := range events {
				if err := j.Record(ctx, e); err != nil {
					t.Fatalf("Record: %v", err)
				}
			}

			got, err := j.Events(ctx, Query{RunID: "run-a"})
			if err != nil {
				t.Fatalf("Events: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("got %d events, want 3", len(got))
			}
			if got[0].Kind != "recognized" || got[2].Kind != "rejected" {
				t.Errorf("events not newest first: %v, %v", got[0].Kind, got[2].Kind)
			}
			learned := got[1]
			if learned.ID == "" || learned.CreatedAt.IsZero() {
				t.Errorf("id and time not filled in: %+v", learned)
			}
			if learned.Label != "LEARNED_426" || learned.Spread != 110.3 || learned.Tick != 40 {
				t.Errorf("learned event = %+v", learned)
			}

			got, _ = j.Events(ctx, Query{Kind: "recognized", Limit: 1})
			if len(got) != 1 || got[0].RunID != "run-b" {
				t.Errorf("Kind+Limit query = %+v", got)
			}

			counts, err := j.Counts(ctx, "run-a")
			if err != nil {
				t.Fatalf("Counts: %v", err)
			}
			if counts["learned"] != 1 || counts["recognized"] != 1 || counts["rejected"] != 1 {
				t.Errorf("counts = %v", counts)
			}
			all, _ := j.Counts(ctx, "")
			if all["recognized"] != 2 {
				t.Errorf("recognized across runs = %d, want 2", all["recognized"])
			}
		})
	}
}

func TestJournal_Runs(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			j.StartRun(ctx, Run{ID: "first", Seed: 7, Neurons: 800})
			j.StartRun(ctx, Run{ID: "second", Seed: 8, Neurons: 800})

			end := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			if err := j.FinishRun(ctx, "first", 1234, end); err != nil {
				t.Fatalf("FinishRun: %v", err)
			}

			runs, err := j.Runs(ctx, 0)
			if err != nil {
				t.Fatalf("Runs: %v", err)
			}
			if len(runs) != 2 || runs[0].ID != "second" {
				t.Fatalf("runs = %+v, want newest first", runs)
			}
			first := runs[1]
			if first.Seed != 7 || first.Ticks != 1234 {
				t.Errorf("first run = %+v", first)
			}
			if first.EndedAt == nil || !first.EndedAt.Equal(end) {
				t.Errorf("EndedAt = %v, want %v", first.EndedAt, end)
			}
			if runs[0].EndedAt != nil {
				t.Error("unfinished run has an end time")
			}

			limited, _ := j.Runs(ctx, 1)
			if len(limited) != 1 {
				t.Errorf("Runs(1) returned %d", len(limited))
			}
		})
	}
}

func TestJournal_UnknownRun(t *testing.T) {
	for name, j := range journals(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := j.Record(ctx, Event{RunID: "ghost", Kind: "learned"}); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("Record err = %v, want ErrRunNotFound", err)
			}
			if err := j.FinishRun(ctx, "ghost", 1, time.Now()); !errors.Is(err, ErrRunNotFound) {
				t.Errorf("FinishRun err = %v, want ErrRunNotFound", err)
			}
			if err := j.StartRun(ctx, Run{}); err == nil {
				t.Error("expected error for empty run id")
			}
		})
	}
}

func TestSQLiteJournal_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "journal.db")

	j, err := NewSQLiteJournal(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	j.StartRun(ctx, Run{ID: "r", Seed: 1})
	j.Record(ctx, Event{RunID: "r", Kind: "learned"})
	if err := j.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	j, err = NewSQLiteJournal(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j.Close()
	if err := j.Record(ctx, Event{RunID: "r", Kind: "recognized"}); err != nil {
		t.Fatalf("Record after reopen: %v", err)
	}
	events, _ := j.Events(ctx, Query{RunID: "r"})
	if len(events) != 2 || events[0].Kind != "recognized" {
		t.Errorf("events after reopen = %+v", events)
	}
	if j.Path() != path {
		t.Errorf("Path() = %q", j.Path())
	}
}
