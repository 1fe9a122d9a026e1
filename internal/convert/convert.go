package convert

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/filetoutf8/internal/charset"
)

// Options tunes a single conversion.
type Options struct {
	// DryRun decodes and reports without writing anything.
	DryRun bool
}

// Convert rewrites path from dec's source encoding to UTF-8 and reports the
// outcome. It handles exactly one file and closes every handle it opens
// before returning.
func Convert(path string, dec *charset.Decoder, opts Options) (res Result) {
	start := time.Now()
	res = Result{Path: path}
	defer func() { res.Duration = time.Since(start) }()

	realPath, info, err := resolve(path)
	if err != nil {
		return res.fail(OutcomeUnreadable, err)
	}
	res.RealPath = realPath

	lock, err := tryLock(realPath)
	if err != nil {
		return res.fail(OutcomeUnreadable, err)
	}
	if lock == nil {
		return res.fail(OutcomeSkipped, ErrLocked)
	}
	defer func() { _ = lock.Unlock() }()

	src, err := os.ReadFile(realPath)
	if err != nil {
		return res.fail(OutcomeUnreadable, err)
	}
	res.BytesIn = int64(len(src))

	out, err := dec.Decode(src)
	if err != nil {
		return res.fail(OutcomeDecodeFailed, err)
	}
	res.BytesOut = int64(len(out))

	if bytes.Equal(out, src) {
		res.Outcome = OutcomeUnchanged
		return res
	}
	if opts.DryRun {
		res.Outcome = OutcomeConverted
		return res
	}

	if err := checkWritable(realPath); err != nil {
		return res.fail(OutcomeUnwritable, err)
	}
	if err := atomicWrite(realPath, out, info.Mode().Perm()); err != nil {
		return res.fail(OutcomeUnwritable, err)
	}
	res.Outcome = OutcomeConverted
	return res
}

// resolve follows symlinks and requires the target to be a regular file.
// Non-regular files are rejected before any open so that FIFOs and devices
// can never block a worker.
func resolve(path string) (string, fs.FileInfo, error) {
	realPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(realPath)
	if err != nil {
		return "", nil, err
	}
	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%s: %w (%s)", path, ErrNotRegular, fileKind(info.Mode()))
	}
	return realPath, info, nil
}

// fileKind names the type of a non-regular file for error messages.
func fileKind(m fs.FileMode) string {
	switch {
	case m.IsDir():
		return "directory"
	case m&fs.ModeNamedPipe != 0:
		return "fifo"
	case m&fs.ModeSocket != 0:
		return "socket"
	case m&fs.ModeDevice != 0:
		return "device"
	default:
		return "irregular file"
	}
}

// checkWritable opens path for writing without truncating it. The rename in
// atomicWrite only needs a writable directory, so this keeps read-only files
// read-only.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	return f.Close()
}
