// Package pathutil shortens file paths for logs and error messages.
package pathutil

import (
	"path/filepath"
)

// RedactPath reduces a full path to .../<parent>/<basename>, so log lines
// and errors do not leak the user's home directory layout.
// For example, "/home/user/.neurosim/journal.db" becomes ".../.neurosim/journal.db".
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	parent := filepath.Base(filepath.Dir(cleaned))
	base := filepath.Base(cleaned)
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}
