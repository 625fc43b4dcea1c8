// Package caption loads timed caption events from SRT, ASS/SSA, and
// WebVTT files. Parsers are tolerant: malformed cues are skipped rather
// than failing the whole file.
package caption

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat indicates a caption format no parser handles.
var ErrUnsupportedFormat = errors.New("caption: unsupported format")

// Event is one timed caption cue. Text keeps the literal \N line-break
// markers used by subtitle formats; Name is the optional speaker tag.
type Event struct {
	StartMS int64
	EndMS   int64
	Name    string
	Text    string
}

// Start returns the event start in seconds.
func (e Event) Start() float64 {
	return float64(e.StartMS) / 1000.0
}

// End returns the event end in seconds.
func (e Event) End() float64 {
	return float64(e.EndMS) / 1000.0
}

// Load reads a caption file, choosing the parser from the file
// extension (.srt, .ass, .ssa, .vtt).
func Load(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load caption: %w", err)
	}
	defer f.Close()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	events, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("load caption %s: %w", path, err)
	}
	return events, nil
}

// Parse reads caption events from r in the named format ("srt", "ass",
// "ssa", or "vtt").
func Parse(r io.Reader, format string) ([]Event, error) {
	switch strings.ToLower(format) {
	case "srt":
		return ParseSRT(r)
	case "ass", "ssa":
		return ParseASS(r)
	case "vtt":
		return ParseVTT(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}
