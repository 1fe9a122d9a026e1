// Command filetoutf8 converts every file under a directory tree whose
// extension is on an allow-list from a source encoding to UTF-8, in place.
//
// Usage: filetoutf8 [OPTIONS] <source-encoding> <extension> [<extension> ...]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/filetoutf8/internal/charset"
	"github.com/backmassage/filetoutf8/internal/check"
	"github.com/backmassage/filetoutf8/internal/config"
	"github.com/backmassage/filetoutf8/internal/display"
	"github.com/backmassage/filetoutf8/internal/logging"
	"github.com/backmassage/filetoutf8/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

var (
	errCheckFailed = errors.New("system check failed")
	errFilesFailed = errors.New("some files could not be converted")
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. Flag and config errors go straight to stderr; the
	// logger does not exist until the config is merged.
	cmd := config.NewCommand(version, execute)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "filetoutf8: %v\n", err)
		return 1
	}
	return 0
}

func execute(cmd *cobra.Command, cfg *config.Config) error {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	// Phase 2: Logger available. Utility modes exit early.
	if cfg.ListEncodings {
		for _, name := range charset.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}
	if cfg.Verbose {
		display.PrintBanner(cmd.OutOrStdout(), version)
	}
	if cfg.CheckOnly {
		log.Debug("filetoutf8 v%s (%s)", version, commit)
		if !check.RunCheck(cfg, log) {
			return errCheckFailed
		}
		return nil
	}

	for _, ext := range cfg.SuspiciousExtensions() {
		log.Warn("Extension %q has no leading dot and will match nothing", ext)
	}
	if err := check.CheckDeps(cfg); err != nil {
		return err
	}

	// Phase 3: Signal handling. Cancel on SIGINT/SIGTERM so no new files are
	// started; conversions in flight finish their atomic replace.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, finishing files in progress...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Phase 4: Walk, filter, convert, report.
	report, err := pipeline.Run(ctx, cfg, log)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "DONE!")

	if cfg.Strict && report.Stats.Failed > 0 {
		return fmt.Errorf("%w: %d failed", errFilesFailed, report.Stats.Failed)
	}
	return nil
}
