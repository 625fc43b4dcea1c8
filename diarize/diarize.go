// Package diarize scores a hypothesis speaker timeline against a
// reference. It reproduces the established diarization error pipeline:
// collar extrusion, optimal label mapping, then a walk over the common
// timeline that attributes every disagreement to false alarm, missed
// detection, or confusion and coalesces adjacent like-errors into
// auditable records.
package diarize

import (
	"math"
	"slices"

	"github.com/jamesainslie/go-capeval/timeline"
)

const (
	// epsilon separates real durations from floating-point noise.
	epsilon = 1e-6
	// mergeGap is the largest gap across which adjacent records with
	// identical label sets are coalesced.
	mergeGap = 0.01
)

// Breakdown is the durational decomposition of a diarization
// comparison. All fields are seconds except Rate. Missed, Confusion,
// and Correct partition Total; FalseAlarm is hypothesis surplus on top.
type Breakdown struct {
	Rate       float64
	FalseAlarm float64
	Missed     float64
	Confusion  float64
	Correct    float64
	Total      float64
}

// ErrorRecord is one merged span of disagreement. Labels are display
// names: reference labels as given, hypothesis labels shown under the
// reference name they mapped to (or their own name when unmapped).
type ErrorRecord struct {
	Start      float64
	End        float64
	RefLabels  []string
	HypLabels  []string
	FalseAlarm float64
	Missed     float64
	Confusion  float64
}

// Duration returns the record's span in seconds.
func (r ErrorRecord) Duration() float64 {
	return r.End - r.Start
}

// Kind classifies the record as "MISS", "FA", "CONF", or "MIX" when
// more than one error type contributes.
func (r ErrorRecord) Kind() string {
	switch {
	case r.Missed > epsilon && r.FalseAlarm < epsilon && r.Confusion < epsilon:
		return "MISS"
	case r.FalseAlarm > epsilon && r.Missed < epsilon && r.Confusion < epsilon:
		return "FA"
	case r.Confusion > epsilon && r.FalseAlarm < epsilon && r.Missed < epsilon:
		return "CONF"
	default:
		return "MIX"
	}
}

// DER computes the diarization error rate breakdown, the merged error
// records behind it, and the optimal label mapping used. The records
// sum to the breakdown's per-cause totals.
func DER(ref, hyp *timeline.Annotation, collar float64, skipOverlap bool) (Breakdown, []ErrorRecord, Mapping) {
	uemRef, uemHyp, _ := Uemify(ref, hyp, collar, skipOverlap)
	mapping := OptimalMapping(uemRef, uemHyp)

	var bd Breakdown
	var records []ErrorRecord
	for _, slice := range uemRef.Timeline().Union(uemHyp.Timeline()).Partition() {
		d := slice.Duration()
		mid := (slice.Start + slice.End) / 2
		rl := uemRef.ActiveAt(mid)
		hl := uemHyp.ActiveAt(mid)

		counts := matchLabels(rl, hl, mapping)
		fa := float64(counts.falseAlarm) * d
		miss := float64(counts.missed) * d
		conf := float64(counts.confusion) * d

		bd.Total += float64(len(rl)) * d
		bd.Correct += float64(counts.correct) * d
		bd.FalseAlarm += fa
		bd.Missed += miss
		bd.Confusion += conf

		if fa > epsilon || miss > epsilon || conf > epsilon {
			records = append(records, ErrorRecord{
				Start:      slice.Start,
				End:        slice.End,
				RefLabels:  rl,
				HypLabels:  displayLabels(hl, mapping),
				FalseAlarm: fa,
				Missed:     miss,
				Confusion:  conf,
			})
		}
	}
	if bd.Total > 0 {
		bd.Rate = (bd.FalseAlarm + bd.Missed + bd.Confusion) / bd.Total
	}
	return bd, mergeRecords(records), mapping
}

type matchCounts struct {
	correct    int
	confusion  int
	missed     int
	falseAlarm int
}

// matchLabels counts agreement between the label multisets active over
// one slice. A hypothesis label matches only the reference label it is
// mapped to; an unmapped hypothesis label matches nothing, even if it
// happens to share a reference label's name.
func matchLabels(rl, hl []string, mapping Mapping) matchCounts {
	nr, nh := len(rl), len(hl)
	correct := 0
	if nr > 0 && nh > 0 {
		refCount := make(map[string]int, nr)
		for _, r := range rl {
			refCount[r]++
		}
		for r, c := range mappedCounts(hl, mapping) {
			correct += min(c, refCount[r])
		}
	}
	m := min(nr, nh)
	return matchCounts{
		correct:    correct,
		confusion:  m - correct,
		missed:     nr - m,
		falseAlarm: nh - m,
	}
}

func mappedCounts(hl []string, mapping Mapping) map[string]int {
	out := make(map[string]int, len(hl))
	for _, h := range hl {
		if r, ok := mapping.Ref(h); ok {
			out[r]++
		}
	}
	return out
}

func displayLabels(hl []string, mapping Mapping) []string {
	out := make([]string, len(hl))
	for i, h := range hl {
		out[i] = mapping.Display(h)
	}
	slices.Sort(out)
	return out
}

// mergeRecords coalesces adjacent records whose (ref, hyp) label sets
// are identical and whose boundary gap is under mergeGap.
func mergeRecords(records []ErrorRecord) []ErrorRecord {
	var out []ErrorRecord
	for _, rec := range records {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if slices.Equal(last.RefLabels, rec.RefLabels) &&
				slices.Equal(last.HypLabels, rec.HypLabels) &&
				math.Abs(last.End-rec.Start) < mergeGap {
				last.End = rec.End
				last.FalseAlarm += rec.FalseAlarm
				last.Missed += rec.Missed
				last.Confusion += rec.Confusion
				continue
			}
		}
		out = append(out, rec)
	}
	return out
}

// JER returns the mean per-speaker Jaccard error rate and the number of
// reference speakers scored. Overlapping speech is kept; only the
// collar applies. A reference speaker with no mapped hypothesis
// counterpart scores 1.
func JER(ref, hyp *timeline.Annotation, collar float64) (float64, int) {
	uemRef, uemHyp, _ := Uemify(ref, hyp, collar, false)
	mapping := OptimalMapping(uemRef, uemHyp)
	toHyp := mapping.Invert()

	labels := uemRef.Labels()
	if len(labels) == 0 {
		return 0, 0
	}
	var sum float64
	for _, refLabel := range labels {
		hypLabel, ok := toHyp[refLabel]
		if !ok {
			sum++
			continue
		}
		r := uemRef.LabelTimeline(refLabel)
		h := uemHyp.LabelTimeline(hypLabel)
		union := r.Union(h).Duration()
		fa := union - r.Duration()
		missed := union - h.Duration()
		sum += (fa + missed) / union
	}
	return sum / float64(len(labels)), len(labels)
}
