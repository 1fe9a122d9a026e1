package config

// This file builds the cobra root command: flag definitions, help text, and
// the merge of defaults, config file, flags, and positional args into a
// Config. Flags are captured into flagValues and copied into the Config only
// when the user actually set them, so config file values hold otherwise.

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunFunc executes a run once the Config is fully merged and validated.
type RunFunc func(cmd *cobra.Command, cfg *Config) error

// flagValues holds raw flag values before they are merged into a Config.
type flagValues struct {
	configFile     string
	root           string
	exclude        []string
	followSymlinks bool
	maxDepth       int
	workers        int
	dryRun         bool
	strict         bool
	verbose        bool
	forceColor     bool
	noColor        bool
	logFile        string
	report         string
	check          bool
	listEncodings  bool
}

// NewCommand returns the root command. When fewer than two positional args
// are given (and no utility mode is selected) it prints the usage text to
// stdout and succeeds without touching the filesystem.
func NewCommand(version string, run RunFunc) *cobra.Command {
	var fv flagValues

	cmd := &cobra.Command{
		Use:           "filetoutf8 [OPTIONS] <source-encoding> <extension> [<extension> ...]",
		Short:         "Convert files under a directory tree to UTF-8 in place",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !fv.check && !fv.listEncodings && len(args) < 2 {
				printNeedArgs(cmd.OutOrStdout(), version)
				return nil
			}
			cfg, err := buildConfig(cmd.Flags(), &fv, args)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	defineTraversalFlags(fs, &fv)
	defineBehaviorFlags(fs, &fv)
	defineDisplayFlags(fs, &fv)
	defineUtilityFlags(fs, &fv)

	cmd.SetVersionTemplate("filetoutf8 v{{.Version}}\n")
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) { printUsage(c.OutOrStdout(), version) })
	cmd.SetUsageFunc(func(c *cobra.Command) error {
		printUsage(c.OutOrStdout(), version)
		return nil
	})
	return cmd
}

// defineTraversalFlags registers -r/--root, --exclude, --follow-symlinks, --max-depth.
func defineTraversalFlags(fs *pflag.FlagSet, fv *flagValues) {
	fs.StringVarP(&fv.root, "root", "r", ".", "Directory to convert (default: current directory)")
	fs.StringSliceVar(&fv.exclude, "exclude", nil, "Directory names to skip (repeatable)")
	fs.BoolVar(&fv.followSymlinks, "follow-symlinks", false, "Descend into symlinked directories")
	fs.IntVar(&fv.maxDepth, "max-depth", 0, "Maximum recursion depth (0 = unlimited)")
}

// defineBehaviorFlags registers -j/--workers, -n/--dry-run, --strict, --report.
func defineBehaviorFlags(fs *pflag.FlagSet, fv *flagValues) {
	fs.IntVarP(&fv.workers, "workers", "j", DefaultWorkers(), "Concurrent file conversions")
	fs.BoolVarP(&fv.dryRun, "dry-run", "n", false, "Decode and report only; do not write")
	fs.BoolVar(&fv.strict, "strict", false, "Exit with status 1 if any file failed")
	fs.StringVar(&fv.report, "report", "", "Write a JSON run report to this path")
}

// defineDisplayFlags registers --color, --no-color, -v/--verbose, -l/--log.
func defineDisplayFlags(fs *pflag.FlagSet, fv *flagValues) {
	fs.BoolVar(&fv.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&fv.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&fv.verbose, "verbose", "v", false, "Log every file")
	fs.StringVarP(&fv.logFile, "log", "l", "", "Append logs to file")
}

// defineUtilityFlags registers --config, -c/--check, --list-encodings and -V/--version.
func defineUtilityFlags(fs *pflag.FlagSet, fv *flagValues) {
	fs.StringVar(&fv.configFile, "config", "", "YAML config file (default: "+DefaultConfigFile+" if present)")
	fs.BoolVarP(&fv.check, "check", "c", false, "Run pre-flight diagnostics and exit")
	fs.BoolVar(&fv.listEncodings, "list-encodings", false, "Print supported source encodings and exit")
	fs.BoolP("version", "V", false, "Print version and exit")
}

// buildConfig layers defaults, the config file, changed flags, and
// positional args, then validates the result.
func buildConfig(fs *pflag.FlagSet, fv *flagValues, args []string) (*Config, error) {
	cfg := DefaultConfig()

	path, explicit := DefaultConfigFile, false
	if fs.Changed("config") {
		path, explicit = fv.configFile, true
	}
	if err := LoadFile(&cfg, path, explicit); err != nil {
		return nil, err
	}

	applyChangedFlags(fs, fv, &cfg)
	parsePositionalArgs(args, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyChangedFlags copies only the flags the user set into cfg.
func applyChangedFlags(fs *pflag.FlagSet, fv *flagValues, cfg *Config) {
	if fs.Changed("root") {
		cfg.RootDir = NormalizeDirArg(fv.root)
	}
	if fs.Changed("exclude") {
		cfg.Exclude = fv.exclude
	}
	if fs.Changed("follow-symlinks") {
		cfg.FollowSymlinks = fv.followSymlinks
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = fv.maxDepth
	}
	if fs.Changed("workers") {
		cfg.Workers = fv.workers
	}
	if fs.Changed("dry-run") {
		cfg.DryRun = fv.dryRun
	}
	if fs.Changed("strict") {
		cfg.Strict = fv.strict
	}
	if fs.Changed("report") {
		cfg.ReportPath = fv.report
	}
	if fs.Changed("verbose") {
		cfg.Verbose = fv.verbose
	}
	if fs.Changed("log") {
		cfg.LogFile = fv.logFile
	}
	if fv.noColor {
		cfg.ColorMode = ColorNever
	} else if fv.forceColor {
		cfg.ColorMode = ColorAlways
	}
	cfg.CheckOnly = fv.check
	cfg.ListEncodings = fv.listEncodings
}

// parsePositionalArgs sets Encoding from the first arg and Extensions from the rest.
func parsePositionalArgs(args []string, cfg *Config) {
	if len(args) == 0 {
		return
	}
	cfg.Encoding = args[0]
	cfg.Extensions = append([]string(nil), args[1:]...)
}

// printNeedArgs writes the short hint shown when encoding or extensions are
// missing, followed by the full usage text.
func printNeedArgs(w io.Writer, version string) {
	fmt.Fprintln(w, "Need encoding and extension.")
	fmt.Fprintln(w, "ex) filetoutf8 EUC-KR .cpp .h")
	fmt.Fprintln(w)
	printUsage(w, version)
}

// printUsage writes the help text to w. Column-aligned for readability.
func printUsage(w io.Writer, version string) {
	const col1 = 28 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "filetoutf8 v" + version + " - convert source files to UTF-8 in place"},
		{"", ""},
		{"  filetoutf8 [OPTIONS] <source-encoding> <extension> [<extension> ...]", ""},
		{"  ex) filetoutf8 EUC-KR .cpp .h", ""},
		{"", ""},
		{"Traversal", ""},
		{"  -r, --root <dir>", "Directory to convert (default: current directory)"},
		{"  --exclude <name>", "Skip directories with this name (repeatable)"},
		{"  --follow-symlinks", "Descend into symlinked directories"},
		{"  --max-depth <n>", "Maximum recursion depth (default: unlimited)"},
		{"", ""},
		{"Conversion", ""},
		{"  -j, --workers <n>", fmt.Sprintf("Concurrent conversions (default: %d)", DefaultWorkers())},
		{"  -n, --dry-run", "Decode and report only; do not write"},
		{"  --strict", "Exit with status 1 if any file failed"},
		{"  --report <path>", "Write a JSON run report"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Log every file"},
		{"  -l, --log <path>", "Append logs to file"},
		{"", ""},
		{"Utility", ""},
		{"  --config <path>", "YAML config file (default: " + DefaultConfigFile + ")"},
		{"  -c, --check", "Pre-flight diagnostics (encoding, root)"},
		{"  --list-encodings", "Print supported source encodings"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}
