package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/filetoutf8/internal/charset"
	"github.com/backmassage/filetoutf8/internal/config"
)

// "안녕" in EUC-KR.
var eucKRHello = []byte{0xBE, 0xC8, 0xB3, 0xE7}

// runCLI executes the root command with args and returns what it wrote to
// stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := config.NewCommand(version, execute)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestExecute_ConvertsAndPrintsDone(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"a.cpp": eucKRHello,
		"b.txt": eucKRHello,
	})

	out, err := runCLI(t, "--root", dir, "EUC-KR", ".cpp")
	require.NoError(t, err)
	assert.Equal(t, "DONE!\n", out)

	got, err := os.ReadFile(filepath.Join(dir, "a.cpp"))
	require.NoError(t, err)
	assert.Equal(t, "안녕", string(got))

	got, err = os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, eucKRHello, got)
}

func TestExecute_FailedFileExitsZeroUnlessStrict(t *testing.T) {
	dir := writeTree(t, map[string][]byte{
		"a.cpp":   eucKRHello,
		"bad.cpp": {'x', 0x80},
	})

	out, err := runCLI(t, "--root", dir, "EUC-KR", ".cpp")
	require.NoError(t, err)
	assert.Contains(t, out, "DONE!")

	out, err = runCLI(t, "--root", dir, "--strict", "EUC-KR", ".cpp")
	assert.ErrorIs(t, err, errFilesFailed)
	assert.Contains(t, out, "DONE!", "the batch still completes")
}

func TestExecute_ListEncodings(t *testing.T) {
	out, err := runCLI(t, "--list-encodings")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, charset.Names(), lines)
	assert.Contains(t, lines, "EUC-KR")
	assert.Contains(t, lines, "ISO-8859-1")
	assert.NotContains(t, out, "DONE!")
}

func TestExecute_MissingRootFails(t *testing.T) {
	out, err := runCLI(t, "--root", filepath.Join(t.TempDir(), "missing"), "EUC-KR", ".cpp")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotContains(t, out, "DONE!")
}

func TestExecute_UnknownEncodingFails(t *testing.T) {
	dir := writeTree(t, map[string][]byte{"a.cpp": eucKRHello})

	out, err := runCLI(t, "--root", dir, "klingon-8", ".cpp")
	assert.ErrorIs(t, err, charset.ErrUnknownEncoding)
	assert.NotContains(t, out, "DONE!")

	got, err := os.ReadFile(filepath.Join(dir, "a.cpp"))
	require.NoError(t, err)
	assert.Equal(t, eucKRHello, got)
}

func TestExecute_TooFewArgsIsHelp(t *testing.T) {
	out, err := runCLI(t, "EUC-KR")
	require.NoError(t, err)
	assert.Contains(t, out, "Need encoding and extension.")
	assert.NotContains(t, out, "DONE!")
}

func TestExecute_Check(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, "--check", "--root", dir, "EUC-KR", ".cpp")
	assert.NoError(t, err)

	_, err = runCLI(t, "--check", "--root", dir, "bogus-charset", ".cpp")
	assert.ErrorIs(t, err, errCheckFailed)
}
