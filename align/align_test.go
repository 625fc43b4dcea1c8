package align

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		hyp  string
		want int
	}{
		{name: "identical", ref: "the quick brown fox", hyp: "the quick brown fox", want: 0},
		{name: "one substitution", ref: "the quick brown fox", hyp: "the quick red fox", want: 1},
		{name: "one deletion", ref: "the quick brown fox", hyp: "the brown fox", want: 1},
		{name: "one insertion", ref: "the brown fox", hyp: "the very brown fox", want: 1},
		{name: "empty ref", ref: "", hyp: "a b c", want: 3},
		{name: "empty hyp", ref: "a b", hyp: "", want: 2},
		{name: "all different", ref: "a b c", hyp: "x y z", want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(strings.Fields(tt.ref), strings.Fields(tt.hyp))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDistanceCharacterLevel(t *testing.T) {
	got := Distance(strings.Split("kitten", ""), strings.Split("sitting", ""))
	assert.Equal(t, 3, got)
}

func TestAlignRoundTrip(t *testing.T) {
	ref := strings.Fields("a b c d")
	hyp := strings.Fields("a x c")
	pairs := Align(ref, hyp, "*", false)

	var gotRef, gotHyp []string
	for _, p := range pairs {
		if p.Ref != "*" {
			gotRef = append(gotRef, p.Ref)
		}
		if p.Hyp != "*" {
			gotHyp = append(gotHyp, p.Hyp)
		}
	}
	assert.Equal(t, ref, gotRef)
	assert.Equal(t, hyp, gotHyp)
}

func TestAlignEmptySides(t *testing.T) {
	pairs := Align(nil, []string{"a", "b"}, "-", false)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{Ref: "-", Hyp: "a"}, pairs[0])
	assert.Equal(t, Pair{Ref: "-", Hyp: "b"}, pairs[1])

	pairs = Align([]string{"a"}, nil, "-", false)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{Ref: "a", Hyp: "-"}, pairs[0])
}

func TestAlignScliteCosts(t *testing.T) {
	// Under sclite weights a substitution (4) beats a gap pair (6), so
	// a single mismatch still aligns diagonally.
	ref := []string{"a", "b"}
	hyp := []string{"a", "c"}
	pairs := Align(ref, hyp, "-", true)
	stats := Score(pairs, "-")
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Substitutions)
}

func TestScore(t *testing.T) {
	pairs := []Pair{
		{Ref: "a", Hyp: "a"},
		{Ref: "b", Hyp: "x"},
		{Ref: "c", Hyp: "-"},
		{Ref: "-", Hyp: "d"},
	}
	stats := Score(pairs, "-")
	assert.Equal(t, Stats{Hits: 1, Substitutions: 1, Deletions: 1, Insertions: 1}, stats)
}

func TestAlignCostAgreesWithDistance(t *testing.T) {
	ref := strings.Fields("to be or not to be that is the question")
	hyp := strings.Fields("to be or to be that was the question here")
	pairs := Align(ref, hyp, "-", false)
	stats := Score(pairs, "-")
	assert.Equal(t, Distance(ref, hyp), stats.Substitutions+stats.Deletions+stats.Insertions)
}
