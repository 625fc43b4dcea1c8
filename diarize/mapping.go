package diarize

import (
	"sort"
	"strings"

	"github.com/jamesainslie/go-capeval/timeline"
)

// Mapping pairs hypothesis speaker labels with reference labels so that
// total co-occurring speech is maximized. Hypothesis labels without a
// positive-overlap counterpart stay unmapped.
type Mapping struct {
	toRef map[string]string
}

// Ref returns the reference label a hypothesis label is mapped to.
func (m Mapping) Ref(hyp string) (string, bool) {
	r, ok := m.toRef[hyp]
	return r, ok
}

// Display returns the reference label for a mapped hypothesis label and
// the label itself otherwise. Reports use these names.
func (m Mapping) Display(hyp string) string {
	if r, ok := m.toRef[hyp]; ok {
		return r
	}
	return hyp
}

// Len returns the number of mapped pairs.
func (m Mapping) Len() int {
	return len(m.toRef)
}

// Pairs returns the mapped (hypothesis, reference) pairs ordered by
// hypothesis label.
func (m Mapping) Pairs() [][2]string {
	out := make([][2]string, 0, len(m.toRef))
	for h, r := range m.toRef {
		out = append(out, [2]string{h, r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// String renders the mapping in Go map syntax, ordered by hypothesis
// label.
func (m Mapping) String() string {
	pairs := m.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p[0] + ":" + p[1]
	}
	return "map[" + strings.Join(parts, " ") + "]"
}

// Invert returns the reference-to-hypothesis view of the mapping. The
// mapping is injective, so no entries collide.
func (m Mapping) Invert() map[string]string {
	out := make(map[string]string, len(m.toRef))
	for h, r := range m.toRef {
		out[r] = h
	}
	return out
}

// OptimalMapping computes the maximum-overlap assignment between
// hypothesis and reference labels over the given annotations. The cost
// matrix holds negated pairwise co-occurrence durations, so the
// minimum-cost assignment maximizes shared speech. Labels enter the
// matrix in sorted order, which makes tie resolution deterministic.
func OptimalMapping(ref, hyp *timeline.Annotation) Mapping {
	refLabels := ref.Labels()
	hypLabels := hyp.Labels()
	mapping := Mapping{toRef: make(map[string]string)}
	if len(refLabels) == 0 || len(hypLabels) == 0 {
		return mapping
	}

	refTimelines := make([]timeline.Timeline, len(refLabels))
	for j, r := range refLabels {
		refTimelines[j] = ref.LabelTimeline(r)
	}

	// Square matrix padded with zero cost; padded cells never win a
	// positive overlap and are dropped below.
	n := max(len(hypLabels), len(refLabels))
	overlap := make([][]float64, n)
	cost := make([][]float64, n)
	for i := range overlap {
		overlap[i] = make([]float64, n)
		cost[i] = make([]float64, n)
	}
	for i, h := range hypLabels {
		ht := hyp.LabelTimeline(h)
		for j := range refLabels {
			d := ht.Intersection(refTimelines[j])
			overlap[i][j] = d
			cost[i][j] = -d
		}
	}

	assign := solveAssignment(cost)
	for i, h := range hypLabels {
		j := assign[i]
		if j < len(refLabels) && overlap[i][j] > 0 {
			mapping.toRef[h] = refLabels[j]
		}
	}
	return mapping
}
