package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/filetoutf8/internal/charset"
	"github.com/backmassage/filetoutf8/internal/config"
	"github.com/backmassage/filetoutf8/internal/convert"
	"github.com/backmassage/filetoutf8/internal/display"
	"github.com/backmassage/filetoutf8/internal/logging"
)

// RunOptions tunes [ConvertTree].
type RunOptions struct {
	Workers int  // Pool width; values below 1 mean 1.
	DryRun  bool // Decode and report only.
	Walk    WalkOptions
}

// Run is the top-level batch entry point: it resolves the source encoding
// and root from cfg, converts the tree, logs a summary, and writes the JSON
// report when one was requested.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Report, error) {
	dec, err := charset.Lookup(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve root %s: %w", cfg.RootDir, err)
	}

	opts := RunOptions{
		Workers: cfg.Workers,
		DryRun:  cfg.DryRun,
		Walk: WalkOptions{
			Exclude:        cfg.Exclude,
			FollowSymlinks: cfg.FollowSymlinks,
			MaxDepth:       cfg.MaxDepth,
		},
	}
	logBatchHeader(log, root, dec, cfg)

	report, err := ConvertTree(ctx, root, dec, cfg.Extensions, opts, log)
	if err != nil {
		return nil, err
	}
	logSummary(log, report)

	if cfg.ReportPath != "" {
		if err := report.WriteJSON(cfg.ReportPath); err != nil {
			return report, err
		}
		log.Info("Report written to %s", cfg.ReportPath)
	}
	return report, nil
}

// ConvertTree walks root, keeps the non-directory entries whose extension
// matches filters, and converts each of them through a bounded worker pool.
// It returns once every dispatched conversion has finished.
//
// Per-file failures never stop the batch; they are recorded in the report.
// The only error returned is a failed walk of root. When ctx is canceled, no
// further files are dispatched and the rest are recorded as skipped;
// conversions already running always complete.
func ConvertTree(
	ctx context.Context,
	root string,
	dec *charset.Decoder,
	filters []string,
	opts RunOptions,
	log *logging.Logger,
) (*Report, error) {
	report := newReport(root, dec.Name(), filters, opts.DryRun)

	candidates, err := Walk(root, opts.Walk, func(path string, err error) {
		log.Warn("Skip directory (unreadable): %s: %v", path, err)
	})
	if err != nil {
		return nil, fmt.Errorf("cannot walk %s: %w", root, err)
	}

	files := selectFiles(candidates, NewExtensionFilter(filters))
	log.Info("Found %d entries, %d matching files", len(candidates), len(files))

	results := make([]convert.Result, len(files))
	aliases := newAliasSet()
	convOpts := convert.Options{DryRun: opts.DryRun}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range files {
		if owner, ok := aliases.claim(path); !ok {
			results[i] = convert.Skipped(path, fmt.Errorf("%w: %s", convert.ErrAlias, owner))
			logResult(log, root, results[i])
			continue
		}
		if ctx.Err() != nil {
			results[i] = convert.Skipped(path, convert.ErrCanceled)
			continue
		}
		g.Go(func() error {
			results[i] = convert.Convert(path, dec, convOpts)
			logResult(log, root, results[i])
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		log.Warn("Interrupted; files not yet started were skipped")
	}
	report.finish(results)
	return report, nil
}

// --- Logging helpers ---

func logBatchHeader(log *logging.Logger, root string, dec *charset.Decoder, cfg *config.Config) {
	log.Info("Root: %s", root)
	log.Info("Encoding: %s -> UTF-8", dec.Name())
	log.Info("Extensions: %s", strings.Join(cfg.Extensions, " "))
	log.Debug("Workers: %d", cfg.Workers)
	if len(cfg.Exclude) > 0 {
		log.Info("Exclude: %s", strings.Join(cfg.Exclude, ", "))
	}
	if cfg.FollowSymlinks {
		log.Info("Symlinked directories: followed")
	}
	if cfg.DryRun {
		log.Warn("DRY RUN - no files will be written")
	}
}

func logResult(log *logging.Logger, root string, r convert.Result) {
	name := relPath(root, r.Path)
	switch r.Outcome {
	case convert.OutcomeConverted:
		log.Debug("Converted: %s (%s -> %s)", name,
			display.FormatBytes(r.BytesIn), display.FormatBytes(r.BytesOut))
	case convert.OutcomeUnchanged:
		log.Debug("Unchanged: %s", name)
	case convert.OutcomeSkipped:
		if errors.Is(r.Err, convert.ErrAlias) {
			log.Debug("Skip (alias): %s: %v", name, r.Err)
		} else {
			log.Warn("Skip: %s: %v", name, r.Err)
		}
	default:
		log.Warn("Skip (%s): %s: %v", r.Outcome, name, r.Err)
	}
}

func logSummary(log *logging.Logger, report *Report) {
	s := report.Stats
	log.Info("==============================")
	log.Info("Done: %d converted, %d unchanged, %d skipped, %d failed",
		s.Converted, s.Unchanged, s.Skipped, s.Failed)
	log.Info("  Matching files: %d", s.Matched)
	if s.Converted > 0 {
		verb := "Rewritten"
		if report.DryRun {
			verb = "Would rewrite"
		}
		log.Success("  %s: %s -> %s (%s)", verb,
			display.FormatBytes(s.BytesIn),
			display.FormatBytes(s.BytesOut),
			display.FormatBytesWithSign(s.SizeDelta()))
	}
	for _, f := range report.Failures() {
		log.Error("  %s: %s: %v", f.Outcome, relPath(report.Root, f.Path), f.Err)
	}
	log.Debug("Run %s took %s (%s)", report.RunID, report.Duration.Round(time.Millisecond),
		display.FormatRate(s.BytesIn, report.Duration))
}

// relPath shortens path for display; it falls back to path when it is not
// below root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
