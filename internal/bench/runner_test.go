package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capeval "github.com/jamesainslie/go-capeval"
	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/internal/dataset"
)

// assFixture renders a minimal ASS file with n two-second dialogue events.
func assFixture(n int) string {
	var b strings.Builder
	b.WriteString("[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Dialogue: 0,0:00:%02d.00,0:00:%02d.00,Default,Alice,0,0,0,,line %d\n", 2*i, 2*i+2, i+1)
	}
	return b.String()
}

// seedDataset builds a catalog with one dataset: a 2-event ground truth
// and model hypotheses with distinctive event counts. The gemini aligned
// file is listed in the metadata but absent on disk.
func seedDataset(t *testing.T) (*dataset.Manager, string) {
	t.Helper()
	root := t.TempDir()

	m, err := dataset.Open(root)
	require.NoError(t, err)
	entry, err := m.Add("Talk-Show-7", "Talk Show 7", "en", "alignment", "https://example.com", dataset.AddOptions{})
	require.NoError(t, err)
	dir := m.Dir(entry)

	md, err := m.Metadata("Talk-Show-7")
	require.NoError(t, err)
	md.Results = []dataset.ModelResult{
		{Model: "whisper-large", Files: map[string]string{"converted": "whisper.ass", "aligned": "whisper_aligned.ass"}},
		{Model: "gemini", Files: map[string]string{"converted": "gemini.ass", "aligned": "gemini_aligned.ass"}},
	}
	data, err := json.Marshal(md)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o644))

	for name, events := range map[string]int{
		"ground_truth.ass":    2,
		"whisper.ass":         1,
		"whisper_aligned.ass": 3,
		"gemini.ass":          4,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(assFixture(events)), 0o644))
	}
	return m, root
}

// countingEval records the hypothesis sizes it sees and scores each call
// with that size, so rows can be traced back to their inputs.
func countingEval(t *testing.T) (EvalFunc, func() []int) {
	t.Helper()
	var mu sync.Mutex
	var sizes []int
	eval := func(ref, hyp []caption.Event, opts ...capeval.Option) (*capeval.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(hyp))
		return &capeval.Result{Scores: map[capeval.Metric]float64{capeval.DER: float64(len(hyp))}}, nil
	}
	return eval, func() []int {
		mu.Lock()
		defer mu.Unlock()
		return append([]int(nil), sizes...)
	}
}

func TestRunnerOrderAndSkips(t *testing.T) {
	m, _ := seedDataset(t)
	eval, seen := countingEval(t)

	runner := NewRunner(m, eval, Options{Workers: 1})
	rows, err := runner.Run(context.Background(), "Talk-Show-7")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	want := []struct {
		model   string
		variant string
		hypLen  float64
	}{
		{"Ground Truth", "baseline", 2},
		{"whisper-large", "converted", 1},
		{"whisper-large (aligned)", "aligned", 3},
		{"gemini", "converted", 4},
	}
	for i, w := range want {
		assert.Equal(t, w.model, rows[i].Model)
		assert.Equal(t, w.variant, rows[i].Variant)
		assert.Equal(t, w.hypLen, rows[i].Result.Scores[capeval.DER])
	}

	assert.Equal(t, []int{2, 1, 3, 4}, seen())
}

func TestRunnerParallelKeepsOrder(t *testing.T) {
	m, _ := seedDataset(t)
	eval, _ := countingEval(t)

	runner := NewRunner(m, eval, Options{Workers: 4})
	rows, err := runner.Run(context.Background(), "Talk-Show-7")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Ground Truth", rows[0].Model)
	assert.Equal(t, "gemini", rows[3].Model)
	for _, row := range rows {
		require.NotNil(t, row.Result)
	}
}

func TestRunnerUnknownDataset(t *testing.T) {
	m, _ := seedDataset(t)
	runner := NewRunner(m, nil, Options{})

	_, err := runner.Run(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestRunnerEvalFailureAborts(t *testing.T) {
	m, _ := seedDataset(t)
	eval := func(ref, hyp []caption.Event, opts ...capeval.Option) (*capeval.Result, error) {
		if len(hyp) == 3 {
			return nil, capeval.ErrInsufficientData
		}
		return &capeval.Result{Scores: map[capeval.Metric]float64{}}, nil
	}

	runner := NewRunner(m, eval, Options{Workers: 1})
	_, err := runner.Run(context.Background(), "Talk-Show-7")
	require.Error(t, err)
	assert.ErrorIs(t, err, capeval.ErrInsufficientData)
	assert.Contains(t, err.Error(), "whisper-large (aligned)")
}

func TestRunnerCancelled(t *testing.T) {
	m, _ := seedDataset(t)
	eval, _ := countingEval(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(m, eval, Options{Workers: 1})
	_, err := runner.Run(ctx, "Talk-Show-7")
	assert.ErrorIs(t, err, context.Canceled)
}
