package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/backmassage/filetoutf8/internal/config"
	"github.com/backmassage/filetoutf8/internal/term"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"zero", 0, "0 B"},
		{"small bytes", 512, "512 B"},
		{"exactly 1 KiB", 1024, "1.0 KiB"},
		{"1.5 KiB", 1536, "1.5 KiB"},
		{"1 MiB", 1024 * 1024, "1.0 MiB"},
		{"1 GiB", 1024 * 1024 * 1024, "1.0 GiB"},
		{"typical source file", 48 * 1024, "48.0 KiB"},
		{"large generated header", 3 * 1024 * 1024 / 2, "1.5 MiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatBytesWithSign(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  string
	}{
		{"positive", 1024 * 1024, "+ 1.0 MiB"},
		{"negative", -1024 * 1024, "- 1.0 MiB"},
		{"zero", 0, "0 B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatBytesWithSign(tt.bytes)
			if got != tt.want {
				t.Errorf("FormatBytesWithSign(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		d     time.Duration
		want  string
	}{
		{"one KiB per second", 1024, time.Second, "1.0 KiB/s"},
		{"half second", 3 * 1024 * 1024, 500 * time.Millisecond, "6.0 MiB/s"},
		{"small", 100, time.Second, "100 B/s"},
		{"zero duration", 1024, 0, "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRate(tt.bytes, tt.d)
			if got != tt.want {
				t.Errorf("FormatRate(%d, %v) = %q, want %q", tt.bytes, tt.d, got, tt.want)
			}
		})
	}
}

func TestPrintBanner(t *testing.T) {
	term.Configure(config.ColorNever)
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	if !strings.Contains(buf.String(), "filetoutf8 v1.2.3") {
		t.Errorf("banner missing version line: %q", buf.String())
	}
}
