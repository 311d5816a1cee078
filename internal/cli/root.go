package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/config"
	tqerrors "github.com/tessro/tubeq/internal/errors"
)

var (
	cfgFile      string
	playlistFile string
	jsonOut      bool
	verbose      bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tubeq",
	Short: "A YouTube play queue for the terminal",
	Long: `Tubeq keeps a queue of YouTube videos, looks up their titles and authors,
and plays them in order through mpv.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.tubeqrc)")
	rootCmd.PersistentFlags().StringVarP(&playlistFile, "file", "f", "", "playlist file (default: queue.file or ~/.local/share/tubeq/playlist.txt)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, tqerrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
