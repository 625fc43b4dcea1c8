package bench

import (
	"context"
	"fmt"
	"sort"

	capeval "github.com/jamesainslie/go-capeval"
	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/diarize"
)

// SweepResult holds the diarization scores for one collar value.
type SweepResult struct {
	Collar    float64
	DER       float64
	JER       float64
	Breakdown *diarize.Breakdown
}

// SweepCollars evaluates one caption pair at each collar value and
// returns the results sorted by collar. Only der and jer respond to the
// collar, so only those are computed.
func SweepCollars(ctx context.Context, eval EvalFunc, ref, hyp []caption.Event, collars []float64, opts Options) ([]SweepResult, error) {
	if eval == nil {
		eval = capeval.Evaluate
	}

	results := make([]SweepResult, 0, len(collars))
	for _, collar := range collars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := eval(ref, hyp,
			capeval.WithMetrics(capeval.DER, capeval.JER),
			capeval.WithCollar(collar),
			capeval.WithSkipOverlap(opts.SkipOverlap),
			capeval.WithSkipEvents(opts.SkipEvents),
			capeval.WithLogger(opts.Logger),
		)
		if err != nil {
			return nil, fmt.Errorf("collar %g: %w", collar, err)
		}
		results = append(results, SweepResult{
			Collar:    collar,
			DER:       res.Scores[capeval.DER],
			JER:       res.Scores[capeval.JER],
			Breakdown: res.DER,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Collar < results[j].Collar
	})
	return results, nil
}
