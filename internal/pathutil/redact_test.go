package pathutil

import "testing"

func TestRedactPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"journal", "/home/user/.neurosim/journal.db", ".../.neurosim/journal.db"},
		{"event log", "/var/lib/neurosim/logs/events.jsonl", ".../logs/events.jsonl"},
		{"root file", "/journal.db", "journal.db"},
		{"relative", "data/journal.db", ".../data/journal.db"},
		{"just filename", "journal.db", "journal.db"},
		{"trailing slash cleaned", "/home/user/.neurosim/", ".../user/.neurosim"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactPath(tt.input); got != tt.want {
				t.Errorf("RedactPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
