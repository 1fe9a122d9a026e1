package convert

import (
	"errors"
	"time"
)

// Sentinel errors attached to non-I/O outcomes.
var (
	ErrNotRegular = errors.New("not a regular file")
	ErrLocked     = errors.New("file is locked by another process")
	ErrAlias      = errors.New("alias of a file already scheduled")
	ErrCanceled   = errors.New("run canceled before dispatch")
)

// Outcome classifies what happened to one file.
type Outcome string

const (
	OutcomeConverted    Outcome = "converted"     // Rewritten as UTF-8 (or would be, in dry-run).
	OutcomeUnchanged    Outcome = "unchanged"     // Decoded bytes equal the input; nothing written.
	OutcomeUnreadable   Outcome = "unreadable"    // Missing, not a regular file, or not readable.
	OutcomeDecodeFailed Outcome = "decode-failed" // Not valid in the source encoding; untouched.
	OutcomeUnwritable   Outcome = "unwritable"    // Decoded but could not be replaced; untouched.
	OutcomeSkipped      Outcome = "skipped"       // Alias, locked elsewhere, or run canceled.
)

// Failed reports whether the outcome counts as a failure.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeUnreadable, OutcomeDecodeFailed, OutcomeUnwritable:
		return true
	}
	return false
}

// Result is the per-file record of one conversion.
type Result struct {
	Path     string        // Path as discovered by the walk.
	RealPath string        // Symlink-resolved path actually read and written.
	Outcome  Outcome
	Err      error         // Cause for every outcome except converted/unchanged.
	BytesIn  int64         // Size of the original content.
	BytesOut int64         // Size of the UTF-8 content.
	Duration time.Duration // Wall time spent on this file.
}

// Skipped returns a result for a file that was never handed to [Convert].
func Skipped(path string, cause error) Result {
	return Result{Path: path, Outcome: OutcomeSkipped, Err: cause}
}

func (r Result) fail(o Outcome, err error) Result {
	r.Outcome = o
	r.Err = err
	return r
}
