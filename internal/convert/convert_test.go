package convert

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/filetoutf8/internal/charset"
)

// "안녕" in EUC-KR.
var eucKRHello = []byte{0xBE, 0xC8, 0xB3, 0xE7}

func eucKR(t *testing.T) *charset.Decoder {
	t.Helper()
	d, err := charset.Lookup("EUC-KR")
	require.NoError(t, err)
	return d
}

func writeFile(t *testing.T, dir, name string, data []byte, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, perm))
	return path
}

func skipIfPrivileged(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}
}

func TestConvert_EUCKRToUTF8(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.cpp", eucKRHello, 0o644)

	res := Convert(path, eucKR(t), Options{})

	require.Equal(t, OutcomeConverted, res.Outcome, "err: %v", res.Err)
	assert.NoError(t, res.Err)
	assert.Equal(t, int64(4), res.BytesIn)
	assert.Equal(t, int64(len("안녕")), res.BytesOut)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("안녕"), got)
}

func TestConvert_PreservesPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	path := writeFile(t, t.TempDir(), "run.sh", eucKRHello, 0o644)
	require.NoError(t, os.Chmod(path, 0o751))

	res := Convert(path, eucKR(t), Options{})
	require.Equal(t, OutcomeConverted, res.Outcome, "err: %v", res.Err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o751), info.Mode().Perm())
}

func TestConvert_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cpp", eucKRHello, 0o644)

	res := Convert(filepath.Join(dir, "a.cpp"), eucKR(t), Options{})
	require.Equal(t, OutcomeConverted, res.Outcome)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.cpp", entries[0].Name())
}

func TestConvert_DecodeFailureLeavesFileUntouched(t *testing.T) {
	orig := []byte{'x', 0x80, 0xFF, 'y'}
	path := writeFile(t, t.TempDir(), "bad.cpp", orig, 0o644)

	res := Convert(path, eucKR(t), Options{})

	assert.Equal(t, OutcomeDecodeFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, charset.ErrMalformed)
	assert.True(t, res.Outcome.Failed())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestConvert_UnchangedWhenAlreadyASCII(t *testing.T) {
	src := []byte("#include <stdio.h>\n")
	path := writeFile(t, t.TempDir(), "plain.h", src, 0o644)
	before, err := os.Stat(path)
	require.NoError(t, err)

	res := Convert(path, eucKR(t), Options{})

	assert.Equal(t, OutcomeUnchanged, res.Outcome)
	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after), "file must not be replaced")
}

func TestConvert_DryRunDoesNotWrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.cpp", eucKRHello, 0o644)

	res := Convert(path, eucKR(t), Options{DryRun: true})

	assert.Equal(t, OutcomeConverted, res.Outcome)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, eucKRHello, got)
}

func TestConvert_MissingFile(t *testing.T) {
	res := Convert(filepath.Join(t.TempDir(), "gone.cpp"), eucKR(t), Options{})
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
	assert.ErrorIs(t, res.Err, os.ErrNotExist)
}

func TestConvert_DirectoryIsUnreadable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "src.cpp")
	require.NoError(t, os.Mkdir(dir, 0o755))

	res := Convert(dir, eucKR(t), Options{})
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrNotRegular)
	assert.Contains(t, res.Err.Error(), "(directory)")
}

func TestConvert_BrokenSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	link := filepath.Join(dir, "dangling.cpp")
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere.cpp"), link))

	res := Convert(link, eucKR(t), Options{})
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
}

func TestConvert_SymlinkConvertsTargetAndKeepsLink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := writeFile(t, dir, "real.cpp", eucKRHello, 0o644)
	link := filepath.Join(dir, "link.cpp")
	require.NoError(t, os.Symlink(target, link))

	res := Convert(link, eucKR(t), Options{})
	require.Equal(t, OutcomeConverted, res.Outcome, "err: %v", res.Err)

	fi, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, fi.Mode()&os.ModeSymlink, "link must stay a symlink")

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("안녕"), got)
}

func TestConvert_UnreadableFile(t *testing.T) {
	skipIfPrivileged(t)
	path := writeFile(t, t.TempDir(), "secret.cpp", eucKRHello, 0o000)

	res := Convert(path, eucKR(t), Options{})
	assert.Equal(t, OutcomeUnreadable, res.Outcome)
}

func TestConvert_ReadOnlyFileIsUnwritable(t *testing.T) {
	skipIfPrivileged(t)
	path := writeFile(t, t.TempDir(), "ro.cpp", eucKRHello, 0o444)

	res := Convert(path, eucKR(t), Options{})

	assert.Equal(t, OutcomeUnwritable, res.Outcome)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, eucKRHello, got)
}

func TestConvert_ReadOnlyDirectoryIsUnwritable(t *testing.T) {
	skipIfPrivileged(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "a.cpp", eucKRHello, 0o644)
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	res := Convert(path, eucKR(t), Options{})

	assert.Equal(t, OutcomeUnwritable, res.Outcome)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, eucKRHello, got)
}

func TestConvert_LockedFileIsSkipped(t *testing.T) {
	path := writeFile(t, t.TempDir(), "busy.cpp", eucKRHello, 0o644)
	realPath, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(lockDir, 0o755))

	other := flock.New(lockPath(realPath))
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	res := Convert(path, eucKR(t), Options{})

	assert.Equal(t, OutcomeSkipped, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrLocked)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, eucKRHello, got)
}

func TestConvert_DataFileStaysUnlocked(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.cpp", eucKRHello, 0o644)
	realPath, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	lp := lockPath(realPath)
	assert.Equal(t, lockDir, filepath.Dir(lp), "lock lives outside the tree")
	assert.Equal(t, lp, lockPath(realPath), "lock path is stable per file")

	res := Convert(path, eucKR(t), Options{})
	require.Equal(t, OutcomeConverted, res.Outcome, "err: %v", res.Err)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no lock or temp file next to the data")

	// The lock was released: another holder can take it right away.
	other := flock.New(lp)
	locked, err := other.TryLock()
	require.NoError(t, err)
	assert.True(t, locked)
	other.Unlock()
}

func TestConvert_FileRemovedBeforeLockIsNotRecreated(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "gone.cpp", eucKRHello, 0o644)
	realPath, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	lock, err := tryLock(realPath)
	require.NoError(t, err)
	require.NotNil(t, lock)
	lock.Unlock()

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOutcome_Failed(t *testing.T) {
	tests := []struct {
		o    Outcome
		want bool
	}{
		{OutcomeConverted, false},
		{OutcomeUnchanged, false},
		{OutcomeSkipped, false},
		{OutcomeUnreadable, true},
		{OutcomeDecodeFailed, true},
		{OutcomeUnwritable, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.o), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.o.Failed())
		})
	}
}
