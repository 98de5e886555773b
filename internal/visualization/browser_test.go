package visualization

import (
	"runtime"
	"testing"
)

func TestOpenBrowser(t *testing.T) {
	switch runtime.GOOS {
	case "linux", "darwin", "windows", "freebsd", "openbsd":
	default:
		t.Skipf("skipping on unsupported platform: %s", runtime.GOOS)
	}

	var gotArgs []string
	orig := startCommand
	startCommand = func(name string, args ...string) error {
		gotArgs = append([]string{name}, args...)
		return nil
	}
	t.Cleanup(func() { startCommand = orig })

	if err := OpenBrowser("http://localhost:8080/"); err != nil {
		t.Fatalf("OpenBrowser: %v", err)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != "http://localhost:8080/" {
		t.Errorf("opener args = %v", gotArgs)
	}
}

func TestOpenBrowser_RejectsNonHTTP(t *testing.T) {
	called := false
	orig := startCommand
	startCommand = func(string, ...string) error { called = true; return nil }
	t.Cleanup(func() { startCommand = orig })

	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "localhost:8080", "http://"} {
		if err := OpenBrowser(u); err == nil {
			t.Errorf("OpenBrowser(%q) accepted", u)
		}
	}
	if called {
		t.Error("opener ran for a rejected URL")
	}
}
