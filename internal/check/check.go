// Package check provides environment diagnostics (--check mode) and
// pre-run validation (CheckDeps) of the source encoding and the root tree.
package check

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/backmassage/filetoutf8/internal/charset"
	"github.com/backmassage/filetoutf8/internal/config"
	"github.com/backmassage/filetoutf8/internal/pipeline"
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// RunCheck runs the --check flow: reports the resolved encoding, the root
// tree, write access under the root, and the effective settings. It is
// informational and never modifies user files. It returns false when any
// check that would block a conversion run failed.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	ok := true

	if !checkEncoding(cfg, log) {
		ok = false
	}
	if !checkRoot(cfg, log) {
		ok = false
	}
	checkWritable(cfg, log)

	log.Info("Workers: %d (%d CPUs)", cfg.Workers, runtime.NumCPU())
	if cfg.ConfigFile != "" {
		log.Info("Config file: %s", cfg.ConfigFile)
	} else {
		log.Info("Config file: none")
	}
	return ok
}

// checkEncoding resolves cfg.Encoding and decodes a probe string with it.
func checkEncoding(cfg *config.Config, log Logger) bool {
	if cfg.Encoding == "" {
		log.Info("Encoding: not given (pass it as the first argument)")
		return true
	}
	dec, err := charset.Lookup(cfg.Encoding)
	if err != nil {
		log.Error("Encoding: %v", err)
		return false
	}
	if _, err := dec.Decode([]byte("filetoutf8\n")); err != nil {
		log.Warn("Encoding %s cannot decode plain ASCII: %v", dec.Name(), err)
	}
	log.Success("Encoding: %s -> UTF-8", dec.Name())
	return true
}

func checkRoot(cfg *config.Config, log Logger) bool {
	if err := checkRootDir(cfg.RootDir); err != nil {
		log.Error("Root: %v", err)
		return false
	}
	log.Success("Root: %s", cfg.RootDir)
	return true
}

// checkWritable creates and removes a scratch file in the root, the same way
// the converter stages its temp files.
func checkWritable(cfg *config.Config, log Logger) {
	f, err := os.CreateTemp(cfg.RootDir, ".filetoutf8-check.*.tmp")
	if err != nil {
		log.Warn("Root is not writable; conversions will fail: %v", err)
		return
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	log.Success("Root is writable")
}

// CheckDeps is the pre-run validation: the source encoding must be known and
// the root must be a readable directory. Per-file problems are left to the
// run itself.
func CheckDeps(cfg *config.Config) error {
	if _, err := charset.Lookup(cfg.Encoding); err != nil {
		return err
	}
	return checkRootDir(cfg.RootDir)
}

// checkRootDir verifies dir exists, is a directory, and can be listed.
func checkRootDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, pipeline.ErrRootNotDir)
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("cannot list %s: %w", dir, err)
	}
	return nil
}
