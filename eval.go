package capeval

import (
	"fmt"
	"math"
	"strings"

	"github.com/jamesainslie/go-capeval/align"
	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/diarize"
	"github.com/jamesainslie/go-capeval/normalize"
)

// Evaluate scores a hypothesis caption stream against a reference one.
// Both streams must already be parsed into events; Evaluate performs no
// file I/O unless debug TextGrids are requested. It is a pure function
// over its inputs and safe for concurrent use.
func Evaluate(ref, hyp []caption.Event, opts ...Option) (*Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	norm := normalize.New(cfg.language)
	refAnn := Annotate(ref, cfg.skipEvents)
	hypAnn := Annotate(hyp, cfg.skipEvents)

	cfg.logger.Debug().
		Int("ref_events", len(ref)).
		Int("hyp_events", len(hyp)).
		Float64("collar", cfg.collar).
		Str("language", cfg.language).
		Bool("skip_overlap", cfg.skipOverlap).
		Bool("skip_events", cfg.skipEvents).
		Msg("evaluating caption pair")

	if cfg.verbose != nil {
		printSentenceDiff(cfg.verbose, ref, hyp, norm, cfg.skipEvents)
	}

	res := &Result{
		Scores:      make(map[Metric]float64, len(cfg.metrics)),
		RefSpeakers: refAnn.Labels(),
		HypSpeakers: hypAnn.Labels(),
	}

	for _, metric := range dedupeMetrics(cfg.metrics) {
		switch metric {
		case DER:
			bd, records, mapping := diarize.DER(refAnn, hypAnn, cfg.collar, cfg.skipOverlap)
			if bd.Total <= 0 {
				return nil, fmt.Errorf("computing der: %w", ErrInsufficientData)
			}
			res.Scores[DER] = bd.Rate
			res.DER = &bd
			res.Errors = records
			if cfg.verbose != nil {
				printErrorTable(cfg.verbose, records, mapping, hyp, cfg.collar, cfg.skipEvents)
			}
			if cfg.debugPath != "" {
				if err := writeDebugGrids(cfg.verbose, refAnn, hypAnn, ref, hyp, records, mapping, cfg.debugPath, cfg.collar, cfg.skipEvents); err != nil {
					return nil, fmt.Errorf("writing debug grids: %w", err)
				}
			}
		case JER:
			jer, scored := diarize.JER(refAnn, hypAnn, cfg.collar)
			if scored == 0 {
				return nil, fmt.Errorf("computing jer: %w", ErrInsufficientData)
			}
			res.Scores[JER] = jer
		case WER:
			refTokens := strings.Fields(Transcript(ref, norm, cfg.skipEvents))
			hypTokens := strings.Fields(Transcript(hyp, norm, cfg.skipEvents))
			if len(refTokens) == 0 {
				return nil, fmt.Errorf("computing wer: %w", ErrInsufficientData)
			}
			res.Scores[WER] = float64(align.Distance(refTokens, hypTokens)) / float64(len(refTokens))
		case SCA:
			var sca float64
			if len(res.RefSpeakers) == len(res.HypSpeakers) {
				sca = 1
			}
			res.Scores[SCA] = sca
		case SCER:
			r, h := len(res.RefSpeakers), len(res.HypSpeakers)
			res.Scores[SCER] = math.Abs(float64(h-r)) / float64(max(r, 1))
		default:
			return nil, fmt.Errorf("%w: %q (supported: der, jer, wer, sca, scer)", ErrUnknownMetric, string(metric))
		}
		cfg.logger.Debug().
			Str("metric", string(metric)).
			Float64("value", res.Scores[metric]).
			Msg("metric computed")
	}

	return res, nil
}

// dedupeMetrics keeps the first occurrence of each metric, preserving
// request order.
func dedupeMetrics(metrics []Metric) []Metric {
	seen := make(map[Metric]bool, len(metrics))
	out := make([]Metric, 0, len(metrics))
	for _, m := range metrics {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
