package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// launchers maps GOOS to the command that hands a URL to the desktop.
var launchers = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"freebsd": {"xdg-open"},
	"windows": {"rundll32", "url.dll,FileProtocolHandler"},
}

// OpenBrowser hands an http(s) authorization URL to the system browser without waiting for it.
func OpenBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("%w: refusing to open %q", ErrInvalidArgument, rawURL)
	}

	rt := getRuntime()
	launcher, ok := launchers[rt]
	if !ok {
		return fmt.Errorf("%w: cannot open a browser on %s", ErrNotImplemented, rt)
	}

	args := append(launcher[1:len(launcher):len(launcher)], u.String())
	if err := exec.Command(launcher[0], args...).Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", launcher[0], err)
	}
	return nil
}
