package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dkoosis/unit/pkg/render"
	"github.com/dkoosis/unit/unit"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// FileName is the name of the YAML config file.
const FileName = ".unit.yaml"

// DefaultThemeName is the theme used when nothing selects one.
const DefaultThemeName = "default"

// CliFlags holds the values of command-line flags.
type CliFlags struct {
	NoColor     bool
	Quiet       bool
	Passing     bool
	NoContents  bool
	NoTotals    bool
	Overwrite   bool
	Debug       bool
	LogFile     string
	GroupPrefix string
	ThemeName   string

	// Flags to track if they were explicitly set by the user
	NoColorSet     bool
	QuietSet       bool
	PassingSet     bool
	NoContentsSet  bool
	NoTotalsSet    bool
	OverwriteSet   bool
	DebugSet       bool
	LogFileSet     bool
	GroupPrefixSet bool
}

// FileConfig is the content of .unit.yaml. Unset keys keep their defaults.
type FileConfig struct {
	ShowTests    *bool  `yaml:"show_tests"`
	ShowTotals   *bool  `yaml:"show_totals"`
	ShowFailing  *bool  `yaml:"show_failing"`
	ShowPassing  *bool  `yaml:"show_passing"`
	ShowContents *bool  `yaml:"show_contents"`
	ShowColor    *bool  `yaml:"show_color"`
	LogFile      string `yaml:"log_file,omitempty"`
	Overwrite    bool   `yaml:"overwrite"`
	GroupPrefix  string `yaml:"group_prefix,omitempty"`
	Theme        string `yaml:"theme,omitempty"`
	Debug        bool   `yaml:"debug"`
}

// ResolvedConfig holds the final configuration after applying all priority rules.
type ResolvedConfig struct {
	Recorder  unit.Config
	ThemeName string
	Debug     bool

	// Resolution metadata (for debugging)
	ConfigPath  string // "" when no file was found
	ColorSource string // "cli", "env", "file", "terminal"
}

// Theme returns the resolved render theme.
func (c *ResolvedConfig) Theme() render.Theme {
	return render.ThemeByName(c.ThemeName)
}

// Resolve builds the configuration from CLI flags, the environment, the
// config file found on fs, and defaults, in that order of priority.
// isTTY is whether stdout is a terminal; it decides color when nothing else
// does. Problems reading the config file are reported on stderr and the file
// is ignored.
func Resolve(fs afero.Fs, cli CliFlags, isTTY bool, stderr io.Writer) (*ResolvedConfig, error) {
	resolved := &ResolvedConfig{
		Recorder:    unit.DefaultConfig(),
		ThemeName:   DefaultThemeName,
		ColorSource: "terminal",
	}
	resolved.Recorder.ShowColor = isTTY

	initialDebug := os.Getenv("UNIT_DEBUG") != "" || cli.Debug
	path := getConfigPath(fs, initialDebug, stderr)
	if path != "" {
		fileCfg, err := LoadFile(fs, path)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v. Using defaults.\n", err)
		} else {
			resolved.ConfigPath = path
			applyFile(resolved, fileCfg)
		}
	}

	if envNoColor := getEnvBool("UNIT_NO_COLOR", "NO_COLOR"); envNoColor != nil {
		resolved.Recorder.ShowColor = !*envNoColor
		resolved.ColorSource = "env"
	}
	if os.Getenv("UNIT_DEBUG") != "" {
		resolved.Debug = true
	}
	if logFile := os.Getenv("UNIT_LOG"); logFile != "" {
		resolved.Recorder.LogFile = logFile
	}

	applyCli(resolved, cli)

	if err := validateResolvedConfig(resolved); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if resolved.Debug {
		fmt.Fprintf(stderr, "[DEBUG Resolve] config=%q color=%t (source %s) theme=%s\n",
			resolved.ConfigPath, resolved.Recorder.ShowColor, resolved.ColorSource, resolved.ThemeName)
	}
	return resolved, nil
}

// LoadFile parses the YAML config file at path.
func LoadFile(fs afero.Fs, path string) (*FileConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config file %s: %w", path, err)
	}
	return &cfg, nil
}

func applyFile(resolved *ResolvedConfig, f *FileConfig) {
	rc := &resolved.Recorder
	setBool(&rc.ShowTests, f.ShowTests)
	setBool(&rc.ShowTotals, f.ShowTotals)
	setBool(&rc.ShowFailing, f.ShowFailing)
	setBool(&rc.ShowPassing, f.ShowPassing)
	setBool(&rc.ShowContents, f.ShowContents)
	if f.ShowColor != nil {
		rc.ShowColor = *f.ShowColor
		resolved.ColorSource = "file"
	}
	if f.LogFile != "" {
		rc.LogFile = f.LogFile
	}
	rc.Overwrite = f.Overwrite
	if f.GroupPrefix != "" {
		rc.GroupPrefix = f.GroupPrefix
	}
	if f.Theme != "" {
		resolved.ThemeName = f.Theme
	}
	resolved.Debug = f.Debug
}

func applyCli(resolved *ResolvedConfig, cli CliFlags) {
	rc := &resolved.Recorder
	if cli.NoColorSet {
		rc.ShowColor = !cli.NoColor
		resolved.ColorSource = "cli"
	}
	if cli.QuietSet {
		rc.ShowTests = !cli.Quiet
	}
	if cli.PassingSet {
		rc.ShowPassing = cli.Passing
	}
	if cli.NoContentsSet {
		rc.ShowContents = !cli.NoContents
	}
	if cli.NoTotalsSet {
		rc.ShowTotals = !cli.NoTotals
	}
	if cli.LogFileSet {
		rc.LogFile = cli.LogFile
	}
	if cli.OverwriteSet {
		rc.Overwrite = cli.Overwrite
	}
	if cli.GroupPrefixSet {
		rc.GroupPrefix = cli.GroupPrefix
	}
	if cli.ThemeName != "" {
		resolved.ThemeName = cli.ThemeName
	}
	if cli.DebugSet {
		resolved.Debug = cli.Debug
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

// getConfigPath returns the local .unit.yaml if present, else the one under
// the user config directory, else "".
func getConfigPath(fs afero.Fs, debug bool, stderr io.Writer) string {
	if exists, _ := afero.Exists(fs, FileName); exists {
		if debug {
			fmt.Fprintf(stderr, "[DEBUG getConfigPath] Using local config file: %s\n", FileName)
		}
		return FileName
	}

	configHome, err := os.UserConfigDir()
	if err != nil || configHome == "" || configHome == "/" {
		if debug {
			fmt.Fprintf(stderr, "[DEBUG getConfigPath] UserConfigDir error or unsuitable path. Error: %v, Path: '%s'\n", err, configHome)
		}
		return ""
	}
	xdgPath := filepath.Join(configHome, "unit", FileName)
	if exists, _ := afero.Exists(fs, xdgPath); exists {
		if debug {
			fmt.Fprintf(stderr, "[DEBUG getConfigPath] Using XDG config file: %s\n", xdgPath)
		}
		return xdgPath
	}
	if debug {
		fmt.Fprintln(stderr, "[DEBUG getConfigPath] No config file found. Will use default settings.")
	}
	return ""
}

// getEnvBool reads a boolean from environment variables, trying multiple keys.
// Returns nil if none are set, or a pointer to the boolean value.
func getEnvBool(keys ...string) *bool {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				return &b
			}
		}
	}
	return nil
}

// ErrUnknownTheme is returned when a theme name does not match a built-in theme.
var ErrUnknownTheme = errors.New("unknown theme")

func validateResolvedConfig(cfg *ResolvedConfig) error {
	switch cfg.ThemeName {
	case "default", "orca", "mono":
	default:
		return fmt.Errorf("%w: %s (must be: default, orca, mono)", ErrUnknownTheme, cfg.ThemeName)
	}
	if cfg.Recorder.Overwrite && cfg.Recorder.LogFile == "" {
		return errors.New("overwrite requires a log file")
	}
	return nil
}
