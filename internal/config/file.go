package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is loaded from the working directory when present and
// no --config flag was given.
const DefaultConfigFile = ".filetoutf8.yaml"

// fileConfig mirrors the YAML layout of a config file. Only non-zero values
// are merged over the defaults. The encoding and extensions always come from
// the command line.
type fileConfig struct {
	Root           string   `yaml:"root"`
	Exclude        []string `yaml:"exclude"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	MaxDepth       int      `yaml:"max_depth"`
	Workers        int      `yaml:"workers"`
	DryRun         bool     `yaml:"dry_run"`
	Strict         bool     `yaml:"strict"`
	Verbose        bool     `yaml:"verbose"`
	Color          string   `yaml:"color"`
	LogFile        string   `yaml:"log_file"`
	Report         string   `yaml:"report"`
}

// LoadFile merges the YAML file at path into cfg. When explicit is false a
// missing file is not an error (the default config file is optional); an
// explicitly requested file must exist. A malformed file is always an error.
func LoadFile(cfg *Config, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Root != "" {
		cfg.RootDir = NormalizeDirArg(fc.Root)
	}
	if len(fc.Exclude) > 0 {
		cfg.Exclude = fc.Exclude
	}
	if fc.FollowSymlinks {
		cfg.FollowSymlinks = true
	}
	if fc.MaxDepth != 0 {
		cfg.MaxDepth = fc.MaxDepth
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}
	if fc.DryRun {
		cfg.DryRun = true
	}
	if fc.Strict {
		cfg.Strict = true
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	if fc.Color != "" {
		cfg.ColorMode = ColorMode(fc.Color)
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.Report != "" {
		cfg.ReportPath = fc.Report
	}
	cfg.ConfigFile = path
	return nil
}
