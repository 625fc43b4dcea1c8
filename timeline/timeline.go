// Package timeline provides interval arithmetic over speech regions.
//
// An Interval is a half-open span of seconds. A Timeline is an ordered
// collection of intervals, and an Annotation attaches speaker labels to
// intervals. All operations return new values; nothing mutates its
// receiver except the Annotation builders.
package timeline

import "sort"

// Interval is a half-open time span [Start, End) in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Duration returns the length of the interval in seconds, or 0 when the
// interval is empty or inverted.
func (i Interval) Duration() float64 {
	if i.End <= i.Start {
		return 0
	}
	return i.End - i.Start
}

// Empty reports whether the interval has no positive duration.
func (i Interval) Empty() bool {
	return i.End <= i.Start
}

// Contains reports whether t falls inside the half-open span.
func (i Interval) Contains(t float64) bool {
	return i.Start <= t && t < i.End
}

// Overlaps reports whether the two intervals share a span of positive
// duration.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Intersect returns the overlapping span of both intervals. The result
// is empty when they do not overlap.
func (i Interval) Intersect(o Interval) Interval {
	out := Interval{Start: max(i.Start, o.Start), End: min(i.End, o.End)}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// Hull returns the smallest interval covering both inputs.
func (i Interval) Hull(o Interval) Interval {
	return Interval{Start: min(i.Start, o.Start), End: max(i.End, o.End)}
}

// Timeline is an ordered multiset of intervals. Duplicates are allowed;
// Support collapses them.
type Timeline []Interval

func (tl Timeline) sorted() Timeline {
	out := make(Timeline, len(tl))
	copy(out, tl)
	sort.Slice(out, func(a, b int) bool {
		if out[a].Start != out[b].Start {
			return out[a].Start < out[b].Start
		}
		return out[a].End < out[b].End
	})
	return out
}

// Support returns the minimal set of disjoint intervals covering the
// same spans. Touching intervals are merged.
func (tl Timeline) Support() Timeline {
	if len(tl) == 0 {
		return nil
	}
	sorted := tl.sorted()
	out := Timeline{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Extent returns the hull from the earliest start to the latest end.
func (tl Timeline) Extent() Interval {
	if len(tl) == 0 {
		return Interval{}
	}
	out := tl[0]
	for _, iv := range tl[1:] {
		out = out.Hull(iv)
	}
	return out
}

// Duration returns the total covered duration, counting overlapping
// spans once.
func (tl Timeline) Duration() float64 {
	var total float64
	for _, iv := range tl.Support() {
		total += iv.Duration()
	}
	return total
}

// Boundaries returns every distinct start and end point in ascending
// order.
func (tl Timeline) Boundaries() []float64 {
	if len(tl) == 0 {
		return nil
	}
	points := make([]float64, 0, 2*len(tl))
	for _, iv := range tl {
		points = append(points, iv.Start, iv.End)
	}
	sort.Float64s(points)
	out := points[:1]
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// Union returns the combination of both timelines without merging.
func (tl Timeline) Union(other Timeline) Timeline {
	out := make(Timeline, 0, len(tl)+len(other))
	out = append(out, tl...)
	out = append(out, other...)
	return out.sorted()
}

// Crop keeps the parts of the timeline that fall inside the support of
// within, splitting intervals at coverage edges. Pieces of zero
// duration are dropped; duplicates survive.
func (tl Timeline) Crop(within Timeline) Timeline {
	support := within.Support()
	var out Timeline
	for _, iv := range tl.sorted() {
		for _, w := range support {
			if inter := iv.Intersect(w); !inter.Empty() {
				out = append(out, inter)
			}
		}
	}
	return out
}

// Gaps returns the spans inside the support of within that the timeline
// does not cover.
func (tl Timeline) Gaps(within Timeline) Timeline {
	support := tl.Support()
	var out Timeline
	for _, w := range within.Support() {
		cursor := w.Start
		for _, s := range support {
			if !s.Overlaps(w) {
				continue
			}
			if s.Start > cursor {
				gap := Interval{Start: cursor, End: min(s.Start, w.End)}
				if !gap.Empty() {
					out = append(out, gap)
				}
			}
			if s.End > cursor {
				cursor = s.End
			}
		}
		if cursor < w.End {
			out = append(out, Interval{Start: cursor, End: w.End})
		}
	}
	return out
}

// Partition cuts the covered region at every boundary and returns the
// resulting slices in order. Each slice lies fully inside the support
// and contains no interior boundary.
func (tl Timeline) Partition() Timeline {
	points := tl.Boundaries()
	if len(points) < 2 {
		return nil
	}
	support := tl.Support()
	var out Timeline
	for k := 0; k < len(points)-1; k++ {
		slice := Interval{Start: points[k], End: points[k+1]}
		if slice.Empty() {
			continue
		}
		mid := (slice.Start + slice.End) / 2
		for _, s := range support {
			if s.Contains(mid) {
				out = append(out, slice)
				break
			}
		}
	}
	return out
}

// Intersection returns the summed overlap duration across every pair of
// intervals drawn from the two timelines. Duplicate intervals count as
// many times as they appear.
func (tl Timeline) Intersection(other Timeline) float64 {
	var total float64
	for _, a := range tl {
		for _, b := range other {
			total += a.Intersect(b).Duration()
		}
	}
	return total
}
