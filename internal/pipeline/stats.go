package pipeline

import "github.com/backmassage/filetoutf8/internal/convert"

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Matched   int   `json:"matched"`
	Converted int   `json:"converted"`
	Unchanged int   `json:"unchanged"`
	Skipped   int   `json:"skipped"`
	Failed    int   `json:"failed"`
	BytesIn   int64 `json:"bytes_in"`  // Original size of converted files.
	BytesOut  int64 `json:"bytes_out"` // UTF-8 size of converted files.
}

// add folds one result into the counters.
func (s *RunStats) add(r convert.Result) {
	s.Matched++
	switch {
	case r.Outcome == convert.OutcomeConverted:
		s.Converted++
		s.BytesIn += r.BytesIn
		s.BytesOut += r.BytesOut
	case r.Outcome == convert.OutcomeUnchanged:
		s.Unchanged++
	case r.Outcome.Failed():
		s.Failed++
	default:
		s.Skipped++
	}
}

// SizeDelta returns how much the converted files grew (negative: shrank).
// Multi-byte legacy encodings usually grow by about half in UTF-8.
func (s *RunStats) SizeDelta() int64 {
	return s.BytesOut - s.BytesIn
}
