package check

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/filetoutf8/internal/charset"
	"github.com/backmassage/filetoutf8/internal/config"
	"github.com/backmassage/filetoutf8/internal/pipeline"
)

type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recordingLogger) Success(f string, a ...interface{}) { r.add("OK", f, a...) }
func (r *recordingLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recordingLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }
func (r *recordingLogger) Debug(f string, a ...interface{})   { r.add("DEBUG", f, a...) }

func testConfig(t *testing.T, enc string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.RootDir = t.TempDir()
	cfg.Encoding = enc
	cfg.Extensions = []string{".cpp"}
	return &cfg
}

func TestCheckDeps_OK(t *testing.T) {
	assert.NoError(t, CheckDeps(testConfig(t, "cp949")))
}

func TestCheckDeps_UnknownEncoding(t *testing.T) {
	err := CheckDeps(testConfig(t, "not-a-charset"))
	assert.ErrorIs(t, err, charset.ErrUnknownEncoding)
}

func TestCheckDeps_MissingRoot(t *testing.T) {
	cfg := testConfig(t, "EUC-KR")
	cfg.RootDir = filepath.Join(cfg.RootDir, "missing")
	assert.ErrorIs(t, CheckDeps(cfg), os.ErrNotExist)
}

func TestCheckDeps_RootIsFile(t *testing.T) {
	cfg := testConfig(t, "EUC-KR")
	file := filepath.Join(cfg.RootDir, "a.cpp")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.RootDir = file
	assert.ErrorIs(t, CheckDeps(cfg), pipeline.ErrRootNotDir)
}

func TestRunCheck_AllGood(t *testing.T) {
	cfg := testConfig(t, "shift_jis")
	log := &recordingLogger{}

	assert.True(t, RunCheck(cfg, log))
	assert.Contains(t, log.lines, "OK Encoding: Shift_JIS -> UTF-8")
	assert.Contains(t, log.lines, "OK Root is writable")
	assert.Contains(t, log.lines, "INFO Config file: none")

	entries, err := os.ReadDir(cfg.RootDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "check must not leave files behind")
}

func TestRunCheck_NoEncodingIsInformational(t *testing.T) {
	cfg := testConfig(t, "")
	log := &recordingLogger{}
	assert.True(t, RunCheck(cfg, log))
}

func TestRunCheck_ReportsFailures(t *testing.T) {
	cfg := testConfig(t, "bogus")
	cfg.RootDir = filepath.Join(cfg.RootDir, "missing")
	log := &recordingLogger{}

	assert.False(t, RunCheck(cfg, log))

	var errs int
	for _, l := range log.lines {
		if len(l) > 5 && l[:5] == "ERROR" {
			errs++
		}
	}
	assert.Equal(t, 2, errs)
}
