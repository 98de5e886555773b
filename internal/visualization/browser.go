package visualization

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// startCommand launches the opener; replaced in tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser opens the viewer at rawURL in the user's default browser.
// Only http and https URLs are accepted.
func OpenBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		return startCommand("xdg-open", u.String())
	case "darwin":
		return startCommand("open", u.String())
	case "windows":
		return startCommand("rundll32", "url.dll,FileProtocolHandler", u.String())
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
