// Package browser opens URLs in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open opens url in the default browser.
func Open(url string) error {
	cmd, err := command(url)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func command(url string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	}
	return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
}
