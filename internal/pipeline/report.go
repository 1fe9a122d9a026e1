package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/backmassage/filetoutf8/internal/convert"
)

// Report is the structured outcome of one run: one result per matched file
// plus aggregate counters.
type Report struct {
	RunID      string
	Root       string
	Encoding   string
	Extensions []string
	DryRun     bool
	StartedAt  time.Time
	Duration   time.Duration
	Stats      RunStats
	Results    []convert.Result // Sorted by path.
}

func newReport(root, encoding string, extensions []string, dryRun bool) *Report {
	return &Report{
		RunID:      uuid.NewString(),
		Root:       root,
		Encoding:   encoding,
		Extensions: append([]string(nil), extensions...),
		DryRun:     dryRun,
		StartedAt:  time.Now(),
	}
}

// finish stores results sorted by path and computes the counters.
func (r *Report) finish(results []convert.Result) {
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	r.Results = results
	r.Stats = RunStats{}
	for _, res := range results {
		r.Stats.add(res)
	}
	r.Duration = time.Since(r.StartedAt)
}

// Failures returns the results whose outcome counts as a failure.
func (r *Report) Failures() []convert.Result {
	var out []convert.Result
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Result returns the result recorded for path.
func (r *Report) Result(path string) (convert.Result, bool) {
	i := sort.Search(len(r.Results), func(i int) bool { return r.Results[i].Path >= path })
	if i < len(r.Results) && r.Results[i].Path == path {
		return r.Results[i], true
	}
	return convert.Result{}, false
}

type reportJSON struct {
	RunID      string       `json:"run_id"`
	Root       string       `json:"root"`
	Encoding   string       `json:"encoding"`
	Extensions []string     `json:"extensions"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	DurationMS int64        `json:"duration_ms"`
	Stats      RunStats     `json:"stats"`
	Files      []resultJSON `json:"files"`
}

type resultJSON struct {
	Path       string `json:"path"`
	RealPath   string `json:"real_path,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
	BytesIn    int64  `json:"bytes_in"`
	BytesOut   int64  `json:"bytes_out"`
	DurationMS int64  `json:"duration_ms"`
}

// MarshalJSON renders the report with snake_case keys and error strings.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		RunID:      r.RunID,
		Root:       r.Root,
		Encoding:   r.Encoding,
		Extensions: r.Extensions,
		DryRun:     r.DryRun,
		StartedAt:  r.StartedAt,
		DurationMS: r.Duration.Milliseconds(),
		Stats:      r.Stats,
		Files:      make([]resultJSON, 0, len(r.Results)),
	}
	for _, res := range r.Results {
		f := resultJSON{
			Path:       res.Path,
			RealPath:   res.RealPath,
			Outcome:    string(res.Outcome),
			BytesIn:    res.BytesIn,
			BytesOut:   res.BytesOut,
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			f.Error = res.Err.Error()
		}
		out.Files = append(out.Files, f)
	}
	return json.Marshal(out)
}

// WriteJSON writes the report as indented JSON to path, creating parent
// directories as needed.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
