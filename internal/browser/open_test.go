package browser

import (
	"runtime"
	"slices"
	"testing"
)

func TestCommand(t *testing.T) {
	switch runtime.GOOS {
	case "darwin", "linux", "windows":
	default:
		t.Skipf("Unsupported platform: %s", runtime.GOOS)
	}

	url := "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	cmd, err := command(url)
	if err != nil {
		t.Fatalf("command() error = %v", err)
	}
	if !slices.Contains(cmd.Args, url) {
		t.Errorf("command() args = %v, want url included", cmd.Args)
	}
}
