// Package bench runs batch caption evaluations over catalog datasets
// and collar sweeps over single caption pairs.
package bench

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	capeval "github.com/jamesainslie/go-capeval"
	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/internal/dataset"
)

// EvalFunc scores one hypothesis event stream against a reference one.
// capeval.Evaluate satisfies it; tests inject stubs.
type EvalFunc func(ref, hyp []caption.Event, opts ...capeval.Option) (*capeval.Result, error)

// Options holds the evaluation parameters shared by every job in a run.
type Options struct {
	Metrics     []capeval.Metric
	Collar      float64
	SkipOverlap bool
	SkipEvents  bool
	Language    string // "auto" resolves from the dataset catalog
	Workers     int
	Logger      zerolog.Logger
}

// Row is one completed evaluation within a run. Variant is "baseline"
// for the ground-truth self-evaluation, otherwise the hypothesis kind
// from the dataset metadata ("converted", "aligned").
type Row struct {
	Model   string
	Variant string
	Path    string
	Result  *capeval.Result
}

type job struct {
	model   string
	variant string
	path    string
}

// Runner evaluates every hypothesis file of a catalog dataset against
// its ground truth.
type Runner struct {
	manager *dataset.Manager
	eval    EvalFunc
	opts    Options
}

// NewRunner builds a runner. A nil eval uses capeval.Evaluate.
func NewRunner(manager *dataset.Manager, eval EvalFunc, opts Options) *Runner {
	if eval == nil {
		eval = capeval.Evaluate
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{manager: manager, eval: eval, opts: opts}
}

// Run scores the dataset's ground truth against itself, then every
// model hypothesis listed in its metadata, skipping files that do not
// exist on disk. Rows come back in job order: baseline first, then
// models in metadata order with converted before aligned. The first
// failing evaluation aborts the run.
func (r *Runner) Run(ctx context.Context, id string) ([]Row, error) {
	entry, err := r.manager.Get(id)
	if err != nil {
		return nil, err
	}
	md, err := r.manager.Metadata(id)
	if err != nil {
		return nil, err
	}

	dir := r.manager.Dir(entry)
	gtPath := filepath.Join(dir, md.GroundTruth.Path)
	ref, err := caption.Load(gtPath)
	if err != nil {
		return nil, fmt.Errorf("load ground truth: %w", err)
	}

	language := r.opts.Language
	if language == "auto" || language == "" {
		if language = r.manager.DetectLanguage(gtPath); language == "" {
			language = "en"
		}
	}

	jobs := []job{{model: "Ground Truth", variant: "baseline", path: gtPath}}
	for _, result := range md.Results {
		for _, variant := range []string{"converted", "aligned"} {
			rel, ok := result.Files[variant]
			if !ok || rel == "" {
				continue
			}
			path := filepath.Join(dir, filepath.FromSlash(rel))
			if _, err := os.Stat(path); err != nil {
				r.opts.Logger.Warn().
					Str("model", result.Model).
					Str("variant", variant).
					Str("path", path).
					Msg("hypothesis file missing, skipping")
				continue
			}
			model := result.Model
			if variant == "aligned" {
				model += " (aligned)"
			}
			jobs = append(jobs, job{model: model, variant: variant, path: path})
		}
	}

	rows := make([]Row, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, jb := range jobs {
		i, jb := i, jb
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.opts.Logger.Info().
				Str("model", jb.model).
				Str("variant", jb.variant).
				Str("path", jb.path).
				Msg("evaluating")

			hyp := ref
			if jb.path != gtPath {
				var err error
				if hyp, err = caption.Load(jb.path); err != nil {
					return fmt.Errorf("load hypothesis %s: %w", jb.path, err)
				}
			}
			res, err := r.eval(ref, hyp, r.evalOptions(language)...)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", jb.model, err)
			}
			rows[i] = Row{Model: jb.model, Variant: jb.variant, Path: jb.path, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Runner) evalOptions(language string) []capeval.Option {
	return []capeval.Option{
		capeval.WithMetrics(r.opts.Metrics...),
		capeval.WithCollar(r.opts.Collar),
		capeval.WithSkipOverlap(r.opts.SkipOverlap),
		capeval.WithSkipEvents(r.opts.SkipEvents),
		capeval.WithLanguage(language),
		capeval.WithLogger(r.opts.Logger),
	}
}
