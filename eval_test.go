package capeval

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/normalize"
)

func event(startMS, endMS int64, name, text string) caption.Event {
	return caption.Event{StartMS: startMS, EndMS: endMS, Name: name, Text: text}
}

func TestEvaluateSelfComparison(t *testing.T) {
	events := []caption.Event{
		event(0, 2000, "Alice", "Hello world."),
		event(2000, 4000, "Bob", "How are you?"),
		event(4000, 6000, "", "I am fine."),
	}

	res, err := Evaluate(events, events)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, res.Scores[DER], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[JER], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[WER], 1e-9)
	assert.InDelta(t, 1.0, res.Scores[SCA], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[SCER], 1e-9)

	require.NotNil(t, res.DER)
	assert.InDelta(t, res.DER.Total, res.DER.Correct, 1e-9)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"Alice", "Bob"}, res.RefSpeakers)
	assert.Equal(t, []string{"Alice", "Bob"}, res.HypSpeakers)
}

func TestEvaluateSingleSpannedSpeaker(t *testing.T) {
	ref := []caption.Event{
		event(0, 5000, "A", "one two three"),
		event(5000, 10000, "B", "four five six"),
	}
	hyp := []caption.Event{
		event(0, 10000, "X", "one two three four five six"),
	}

	res, err := Evaluate(ref, hyp, WithCollar(0))
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.Scores[DER], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[WER], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[SCA], 1e-9)
	assert.InDelta(t, 0.5, res.Scores[SCER], 1e-9)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "CONF", res.Errors[0].Kind())
}

func TestEvaluateSkipEvents(t *testing.T) {
	ref := []caption.Event{
		event(0, 2000, "Alice", "Hello there"),
		event(2000, 3000, "", "[Laughter]"),
	}
	hyp := []caption.Event{
		event(0, 2000, "Alice", "Hello there"),
	}

	t.Run("event-only entries dropped", func(t *testing.T) {
		res, err := Evaluate(ref, hyp, WithCollar(0), WithSkipEvents(true))
		require.NoError(t, err)
		assert.InDelta(t, 0.0, res.Scores[DER], 1e-9)
		assert.InDelta(t, 0.0, res.Scores[WER], 1e-9)
		assert.InDelta(t, 1.0, res.Scores[SCA], 1e-9)
	})

	t.Run("event-only entries kept on the timeline", func(t *testing.T) {
		res, err := Evaluate(ref, hyp, WithCollar(0))
		require.NoError(t, err)
		// The [Laughter] interval stays and is missed by the hypothesis,
		// but its text normalizes away and cannot affect WER.
		assert.InDelta(t, 1.0/3.0, res.Scores[DER], 1e-9)
		assert.InDelta(t, 0.0, res.Scores[WER], 1e-9)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "MISS", res.Errors[0].Kind())
	})
}

func TestEvaluateContractions(t *testing.T) {
	ref := []caption.Event{event(0, 2000, "", "They've said we can't stop")}
	hyp := []caption.Event{event(0, 2000, "", "they have said we cannot stop")}

	res, err := Evaluate(ref, hyp, WithMetrics(WER))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Scores[WER], 1e-9)
}

func TestEvaluateMetricSubset(t *testing.T) {
	events := []caption.Event{event(0, 2000, "Alice", "Hello")}

	res, err := Evaluate(events, events, WithMetrics(WER))
	require.NoError(t, err)

	assert.Len(t, res.Scores, 1)
	assert.Contains(t, res.Scores, WER)
	assert.Nil(t, res.DER)
	assert.Empty(t, res.Errors)
}

func TestEvaluateDuplicateMetricsCollapse(t *testing.T) {
	events := []caption.Event{event(0, 2000, "Alice", "Hello")}

	res, err := Evaluate(events, events, WithMetrics(WER, WER, SCA))
	require.NoError(t, err)
	assert.Len(t, res.Scores, 2)
}

func TestEvaluateUnknownMetric(t *testing.T) {
	events := []caption.Event{event(0, 2000, "Alice", "Hello")}

	_, err := Evaluate(events, events, WithMetrics(Metric("bogus")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestEvaluateInsufficientData(t *testing.T) {
	hyp := []caption.Event{event(0, 2000, "Alice", "Hello")}

	t.Run("der without reference speech", func(t *testing.T) {
		_, err := Evaluate(nil, hyp, WithMetrics(DER))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("jer without reference speech", func(t *testing.T) {
		_, err := Evaluate(nil, hyp, WithMetrics(JER))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("wer without reference tokens", func(t *testing.T) {
		ref := []caption.Event{event(0, 2000, "", "...")}
		_, err := Evaluate(ref, hyp, WithMetrics(WER))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})
}

func TestEvaluateNullSpeakerCounts(t *testing.T) {
	ref := []caption.Event{event(0, 2000, "", "untagged speech")}
	hyp := []caption.Event{event(0, 2000, "X", "untagged speech")}

	res, err := Evaluate(ref, hyp, WithMetrics(SCA, SCER))
	require.NoError(t, err)

	// The null speaker is still one distinct speaker.
	assert.Equal(t, []string{""}, res.RefSpeakers)
	assert.Equal(t, []string{"X"}, res.HypSpeakers)
	assert.InDelta(t, 1.0, res.Scores[SCA], 1e-9)
	assert.InDelta(t, 0.0, res.Scores[SCER], 1e-9)
}

func TestEvaluateVerboseSentenceDiff(t *testing.T) {
	ref := []caption.Event{
		event(0, 2000, "Alice", "hello world"),
		event(2000, 4000, "", "good morning"),
	}
	hyp := []caption.Event{
		event(0, 2000, "Alice", "hello word"),
		event(2000, 4000, "", "good morning"),
	}

	var buf bytes.Buffer
	_, err := Evaluate(ref, hyp, WithMetrics(WER), WithVerbose(&buf))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "[0.00, 2.00] REF: hello world")
	assert.Contains(t, out, "HYP: hello wor")
	assert.NotContains(t, out, "good morning")
}

func TestEvaluateVerboseDiffSkipsTrailingGroup(t *testing.T) {
	ref := []caption.Event{
		event(0, 2000, "", "same text"),
		event(2000, 4000, "", "different here"),
	}
	hyp := []caption.Event{
		event(0, 2000, "", "same text"),
		event(2000, 4000, "", "very other"),
	}

	var buf bytes.Buffer
	_, err := Evaluate(ref, hyp, WithMetrics(WER), WithVerbose(&buf))
	require.NoError(t, err)

	// The final group has no closing sentinel pair, so it never flushes.
	assert.Empty(t, buf.String())
}

func TestEvaluateVerboseErrorTable(t *testing.T) {
	ref := []caption.Event{event(0, 3000, "Alice", "abc")}
	hyp := []caption.Event{event(0, 2000, "Alice", "abc")}

	var buf bytes.Buffer
	res, err := Evaluate(ref, hyp, WithMetrics(DER), WithCollar(0), WithVerbose(&buf))
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)

	out := buf.String()
	assert.Contains(t, out, "=== DER Error Segments (collar=0s) ===")
	assert.Contains(t, out, "Speaker mapping: map[Alice:Alice]")
	assert.Contains(t, out, "MISS")
	assert.Contains(t, out, "DER Error Summary: FA=0.00s  MISS=1.00s  CONF=0.00s  total=1.00s")
	assert.Contains(t, out, "Error count: 1 segments")
}

func TestEvaluateVerboseNoErrors(t *testing.T) {
	events := []caption.Event{event(0, 3000, "Alice", "abc")}

	var buf bytes.Buffer
	_, err := Evaluate(events, events, WithMetrics(DER), WithCollar(0), WithVerbose(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "DER Error Details: no errors found")
}

func TestEvaluateDebugGrids(t *testing.T) {
	ref := []caption.Event{event(0, 3000, "Alice", "abc")}
	hyp := []caption.Event{event(0, 2000, "Alice", "abc")}

	dir := t.TempDir()
	hypPath := filepath.Join(dir, "hyp.ass")

	var buf bytes.Buffer
	_, err := Evaluate(ref, hyp,
		WithMetrics(DER), WithCollar(0), WithVerbose(&buf), WithDebugGrids(hypPath))
	require.NoError(t, err)

	combined := filepath.Join(dir, "hyp.der_collar0_00.TextGrid")
	data, err := os.ReadFile(combined)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "ref_Alice")
	assert.Contains(t, content, "hyp_Alice")
	assert.Contains(t, content, "ref_text")
	assert.Contains(t, content, "hyp_text")
	assert.Contains(t, content, "MISS 1.00s ref=Alice")

	missPath := filepath.Join(dir, "hyp.der_collar0_00_MISS.TextGrid")
	_, err = os.Stat(missPath)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "hyp.der_collar0_00_FA.TextGrid"))
	assert.True(t, os.IsNotExist(err))

	assert.Contains(t, buf.String(), "DER debug TextGrid: "+combined)
	assert.Contains(t, buf.String(), "DER MISS TextGrid: "+missPath)
}

func TestAnnotate(t *testing.T) {
	t.Run("speaker persists across untagged events", func(t *testing.T) {
		ann := Annotate([]caption.Event{
			event(0, 1000, "Alice", "one"),
			event(1000, 2000, "", "two"),
			event(2000, 3000, "Bob", "three"),
		}, false)
		assert.Equal(t, []string{"Alice", "Bob"}, ann.Labels())
		assert.InDelta(t, 2.0, ann.LabelTimeline("Alice").Duration(), 1e-9)
	})

	t.Run("leading untagged events get the null speaker", func(t *testing.T) {
		ann := Annotate([]caption.Event{event(0, 1000, "", "one")}, false)
		assert.Equal(t, []string{""}, ann.Labels())
	})

	t.Run("duplicate spans collapse last-writer-wins", func(t *testing.T) {
		ann := Annotate([]caption.Event{
			event(0, 1000, "Alice", "one"),
			event(0, 1000, "Bob", "two"),
		}, false)
		assert.Equal(t, 1, ann.Len())
		assert.Equal(t, []string{"Bob"}, ann.Labels())
	})

	t.Run("event-only entries dropped when skipping", func(t *testing.T) {
		ann := Annotate([]caption.Event{
			event(0, 1000, "Alice", "one"),
			event(1000, 2000, "", "[Applause]"),
		}, true)
		assert.Equal(t, 1, ann.Len())
	})
}

func TestSpeakerTag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Alice", "Alice"},
		{"trailing colon", "Alice:", "Alice"},
		{"leading marker", ">Bob", "Bob"},
		{"both", ">Bob:", "Bob"},
		{"fullwidth", "Ａｌｉｃｅ", "Alice"},
		{"colon then space survives as text", "Alice: ", "Alice:"},
		{"surrounding space", "  Carol  ", "Carol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, speakerTag(tt.in))
		})
	}
}

func TestTranscript(t *testing.T) {
	norm := normalize.New("en")

	tests := []struct {
		name       string
		events     []caption.Event
		skipEvents bool
		want       string
	}{
		{
			name:   "joins events in order",
			events: []caption.Event{event(0, 1000, "", "Hello"), event(1000, 2000, "", "world.")},
			want:   "hello world",
		},
		{
			name:   "expands contractions",
			events: []caption.Event{event(0, 1000, "", "can't")},
			want:   "cannot",
		},
		{
			name:   "two word expansion",
			events: []caption.Event{event(0, 1000, "", "they've")},
			want:   "they have",
		},
		{
			name:       "event-only entry dropped when skipping",
			events:     []caption.Event{event(0, 1000, "", "[Laughter]")},
			skipEvents: true,
			want:       "",
		},
		{
			name:       "inline marker removed when skipping",
			events:     []caption.Event{event(0, 1000, "", "Hello [Laughter] there")},
			skipEvents: true,
			want:       "hello there",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transcript(tt.events, norm, tt.skipEvents))
		})
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"der", DER, false},
		{"WER", WER, false},
		{"Sca", SCA, false},
		{"scer", SCER, false},
		{"jer", JER, false},
		{"bogus", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMetric)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetricDirection(t *testing.T) {
	assert.True(t, DER.LowerIsBetter())
	assert.True(t, WER.LowerIsBetter())
	assert.False(t, SCA.LowerIsBetter())
	assert.Len(t, AllMetrics(), 5)
}
