package capeval

import (
	"io"

	"github.com/rs/zerolog"
)

// Option configures an evaluation.
type Option func(*config)

type config struct {
	metrics     []Metric
	collar      float64
	skipOverlap bool
	skipEvents  bool
	language    string
	logger      zerolog.Logger
	verbose     io.Writer
	debugPath   string
}

func defaultConfig() config {
	return config{
		metrics:  AllMetrics(),
		collar:   0.2,
		language: "en",
		logger:   zerolog.Nop(),
	}
}

// WithMetrics restricts the evaluation to the given metrics (default:
// all five).
func WithMetrics(metrics ...Metric) Option {
	return func(c *config) {
		if len(metrics) > 0 {
			c.metrics = metrics
		}
	}
}

// WithCollar sets the width in seconds of the band excluded around every
// reference boundary (default: 0.2).
func WithCollar(seconds float64) Option {
	return func(c *config) {
		if seconds >= 0 {
			c.collar = seconds
		}
	}
}

// WithSkipOverlap excludes regions where the reference has concurrent
// speakers from diarization scoring.
func WithSkipOverlap(skip bool) Option {
	return func(c *config) {
		c.skipOverlap = skip
	}
}

// WithSkipEvents drops bracketed markers such as [Laughter] from the
// transcripts and drops marker-only events entirely.
func WithSkipEvents(skip bool) Option {
	return func(c *config) {
		c.skipEvents = skip
	}
}

// WithLanguage sets the transcript normalization language (default: "en").
func WithLanguage(code string) Option {
	return func(c *config) {
		if code != "" {
			c.language = code
		}
	}
}

// WithLogger sets the logger (default: zerolog.Nop()).
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithVerbose streams the sentence-level diff and the error attribution
// table to w.
func WithVerbose(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.verbose = w
		}
	}
}

// WithDebugGrids writes TextGrid sidecars next to path, which should be
// the hypothesis caption file.
func WithDebugGrids(path string) Option {
	return func(c *config) {
		c.debugPath = path
	}
}
