// Package config holds runtime configuration: defaults, YAML config file
// loading, CLI flag parsing, and validation.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Worker pool bounds used by [DefaultWorkers].
const (
	minDefaultWorkers = 4
	maxDefaultWorkers = 16
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by an optional YAML file ([LoadFile]), then by explicitly set CLI
// flags, before being passed (by pointer) to packages that need it.
type Config struct {
	// Conversion input (set from positional args).
	Encoding   string   // Source encoding name, e.g. "EUC-KR".
	Extensions []string // Extension allow-list, e.g. ".cpp", ".h".

	// Traversal.
	RootDir        string   // Default: "." (process working directory).
	Exclude        []string // Directory base names pruned during the walk.
	FollowSymlinks bool     // Descend into symlinked directories (cycle-safe).
	MaxDepth       int      // 0 = unlimited.

	// Conversion behavior.
	Workers int  // Default: NumCPU/2 clamped to [4, 16].
	DryRun  bool // Decode and report only; never write.
	Strict  bool // Exit non-zero when any file failed.

	// Display and logging.
	Verbose    bool
	ColorMode  ColorMode // Default: "auto".
	LogFile    string    // Optional log file path.
	ReportPath string    // Optional JSON run report path.

	// Utility modes.
	CheckOnly     bool // Run --check diagnostics and exit.
	ListEncodings bool // Print supported encodings and exit.

	// ConfigFile is the YAML file the settings were loaded from, if any.
	ConfigFile string
}

// DefaultConfig returns a Config with all defaults applied. Used as the base
// before the config file and CLI flags apply overrides.
func DefaultConfig() Config {
	return Config{
		RootDir:   ".",
		Workers:   DefaultWorkers(),
		ColorMode: ColorAuto,
	}
}

// DefaultWorkers returns the default conversion pool width: half the CPUs,
// clamped to [4, 16]. Conversion is dominated by open/read/rename syscalls,
// so a few more workers than cores pays off on small machines.
func DefaultWorkers() int {
	n := runtime.NumCPU() / 2
	if n < minDefaultWorkers {
		n = minDefaultWorkers
	}
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	return n
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// NeedsConversionArgs reports whether this run converts files and therefore
// requires an encoding and at least one extension.
func (c *Config) NeedsConversionArgs() bool {
	return !c.CheckOnly && !c.ListEncodings
}

// Validate checks enum and numeric fields. Outside the utility modes it also
// requires an encoding and at least one extension.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative (got %d)", c.MaxDepth)
	}
	if c.RootDir == "" {
		return errors.New("root directory must not be empty")
	}

	if !c.NeedsConversionArgs() {
		return nil
	}
	if strings.TrimSpace(c.Encoding) == "" {
		return errors.New("need a source encoding")
	}
	if len(c.Extensions) == 0 {
		return errors.New("need at least one extension")
	}
	return nil
}

// SuspiciousExtensions returns the extension entries that can never match a
// file: non-empty entries without a leading dot (filepath.Ext always includes
// the dot). An empty entry is not suspicious; it selects files that have no
// extension.
func (c *Config) SuspiciousExtensions() []string {
	var out []string
	for _, ext := range c.Extensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			out = append(out, ext)
		}
	}
	return out
}
