package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/tessro/tubeq/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing tubeq configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration, after defaults and TUBEQ_* overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a new configuration file with default values.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value. Without a value, prompt for one.

Supported keys:
  queue.capacity, queue.file, queue.loop, queue.shuffle
  player.backend, player.mpv_path, player.socket, player.video, player.seek_step
  lookup.oembed_url, lookup.proxy_url, lookup.timeout, lookup.max_retries,
  lookup.include_shorts, lookup.published_at, lookup.concurrency
  lock.hold_ms
  tui.theme, tui.refresh_interval
  log.level, log.file

Examples:
  tubeq config set player.backend none
  tubeq config set tui.theme mocha`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindBool
)

// configKeys lists every settable key with its value type.
var configKeys = map[string]keyKind{
	"queue.capacity":        kindInt,
	"queue.file":            kindString,
	"queue.loop":            kindBool,
	"queue.shuffle":         kindBool,
	"player.backend":        kindString,
	"player.mpv_path":       kindString,
	"player.socket":         kindString,
	"player.video":          kindBool,
	"player.seek_step":      kindInt,
	"lookup.oembed_url":     kindString,
	"lookup.proxy_url":      kindString,
	"lookup.timeout":        kindInt,
	"lookup.max_retries":    kindInt,
	"lookup.include_shorts": kindBool,
	"lookup.published_at":   kindBool,
	"lookup.concurrency":    kindInt,
	"lock.hold_ms":          kindInt,
	"tui.theme":             kindString,
	"tui.refresh_interval":  kindInt,
	"log.level":             kindString,
	"log.file":              kindString,
}

func sortedKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseValue converts value to the TOML type of key.
func parseValue(key, value string) (any, error) {
	kind, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown key %q (supported: %s)", key, strings.Join(sortedKeys(), ", "))
	}
	switch kind {
	case kindInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	}
	return value, nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if JSONOutput() {
		return printJSON(cfg)
	}

	encoder := toml.NewEncoder(os.Stdout)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := config.Path(); p != "" {
		return p
	}
	return config.DefaultPath()
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	_, err := os.Stat(path)
	exists := err == nil
	if JSONOutput() {
		return printJSON(map[string]any{"path": path, "exists": exists})
	}
	fmt.Println(path)
	if !exists && Verbose() {
		fmt.Fprintln(os.Stderr, "(not created yet; run 'tubeq config init')")
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s. Run 'tubeq config init' first", configPath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

// writeConfigFile encodes v as TOML under the standard header.
func writeConfigFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer func() { _ = f.Close() }()

	_, _ = fmt.Fprintln(f, "# tubeq configuration")
	_, _ = fmt.Fprintln(f, "")

	encoder := toml.NewEncoder(f)
	encoder.Indent = "  "
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	if err := writeConfigFile(configPath, config.Default()); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}
	fmt.Printf("Created config file: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Install mpv, or set player.backend = \"none\"")
	fmt.Println("  2. Run 'tubeq queue add <url>' and then 'tubeq ui'")
	return nil
}

func promptValue(key string) (string, error) {
	if configKeys[key] == kindBool {
		var b bool
		form := huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(key).Value(&b)))
		if err := form.Run(); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	}

	var value string
	form := huh.NewForm(huh.NewGroup(huh.NewInput().Title(key).Value(&value)))
	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if _, ok := configKeys[key]; !ok {
		_, err := parseValue(key, "")
		return err
	}

	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		v, err := promptValue(key)
		if err != nil {
			return fmt.Errorf("input cancelled: %w", err)
		}
		value = v
	}

	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	configPath := getConfigPath()
	rawConfig := make(map[string]any)
	if data, err := os.ReadFile(configPath); err == nil {
		if _, err := toml.Decode(string(data), &rawConfig); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}

	section, field := splitKey(key)
	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}
	sectionMap[field] = typed

	// Reject values the loader would refuse.
	var check config.Config
	if err := decodeRaw(rawConfig, &check); err != nil {
		return err
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return err
	}

	if err := writeConfigFile(configPath, rawConfig); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func splitKey(key string) (section, field string) {
	section, field, _ = strings.Cut(key, ".")
	return section, field
}

// decodeRaw round-trips a raw TOML map into a typed config.
func decodeRaw(raw map[string]any, dst *config.Config) error {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(raw); err != nil {
		return err
	}
	md, err := toml.Decode(sb.String(), dst)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return nil
}
