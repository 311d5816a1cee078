package cli

import (
	"fmt"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo()
		if JSONOutput() {
			return printJSON(info)
		}

		fmt.Printf("tubeq %s\n", info["version"])
		if Verbose() {
			fmt.Printf("  commit:     %s\n", info["commit"])
			fmt.Printf("  built:      %s\n", info["build_date"])
			fmt.Printf("  go version: %s\n", info["go_version"])
			fmt.Printf("  platform:   %s\n", info["platform"])
			fmt.Printf("  mpv:        %s\n", info["mpv"])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionInfo() map[string]string {
	version := Version
	if version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			version = bi.Main.Version
		}
	}
	return map[string]string{
		"version":    version,
		"commit":     Commit,
		"build_date": BuildDate,
		"go_version": runtime.Version(),
		"platform":   runtime.GOOS + "/" + runtime.GOARCH,
		"mpv":        mpvVersion(),
	}
}

// mpvVersion reports the first line of `mpv --version`, or "not found".
func mpvVersion() string {
	path := "mpv"
	if cfg != nil && cfg.Player.MPVPath != "" {
		path = cfg.Player.MPVPath
	}
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		return "not found"
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line)
}
