package timeline

import "sort"

// Track is one labeled interval of speech. The empty label is legal and
// denotes an unattributed speaker.
type Track struct {
	Interval Interval
	Label    string
}

// Annotation is a multi-track mapping from intervals to speaker labels.
// Several tracks may share the same span, which is how overlapped
// speech is represented.
type Annotation struct {
	tracks []Track
}

// NewAnnotation returns an empty annotation.
func NewAnnotation() *Annotation {
	return &Annotation{}
}

// Upsert sets the label for the exact span [iv.Start, iv.End), replacing
// an existing track with the same span. Use Append to keep duplicates.
func (a *Annotation) Upsert(iv Interval, label string) {
	for k := range a.tracks {
		if a.tracks[k].Interval == iv {
			a.tracks[k].Label = label
			return
		}
	}
	a.tracks = append(a.tracks, Track{Interval: iv, Label: label})
}

// Append adds a track without deduplication.
func (a *Annotation) Append(iv Interval, label string) {
	a.tracks = append(a.tracks, Track{Interval: iv, Label: label})
}

// Len returns the number of tracks.
func (a *Annotation) Len() int {
	return len(a.tracks)
}

// Empty reports whether the annotation has no tracks.
func (a *Annotation) Empty() bool {
	return len(a.tracks) == 0
}

// Tracks returns a copy of all tracks ordered by start, end, then label.
func (a *Annotation) Tracks() []Track {
	out := make([]Track, len(a.tracks))
	copy(out, a.tracks)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Interval.Start != out[j].Interval.Start {
			return out[i].Interval.Start < out[j].Interval.Start
		}
		if out[i].Interval.End != out[j].Interval.End {
			return out[i].Interval.End < out[j].Interval.End
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Labels returns the distinct labels in ascending order.
func (a *Annotation) Labels() []string {
	seen := make(map[string]struct{}, len(a.tracks))
	for _, t := range a.tracks {
		seen[t.Label] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// LabelTimeline returns the intervals carrying the given label.
func (a *Annotation) LabelTimeline(label string) Timeline {
	var out Timeline
	for _, t := range a.tracks {
		if t.Label == label {
			out = append(out, t.Interval)
		}
	}
	return out.sorted()
}

// Timeline returns every track interval, duplicates included.
func (a *Annotation) Timeline() Timeline {
	out := make(Timeline, 0, len(a.tracks))
	for _, t := range a.tracks {
		out = append(out, t.Interval)
	}
	return out.sorted()
}

// Extent returns the hull of all tracks.
func (a *Annotation) Extent() Interval {
	return a.Timeline().Extent()
}

// Crop keeps the parts of each track inside the support of within,
// splitting tracks at coverage edges. Cropped pieces are appended as
// fresh tracks, so spans duplicated across speakers stay duplicated.
func (a *Annotation) Crop(within Timeline) *Annotation {
	support := within.Support()
	out := NewAnnotation()
	for _, t := range a.Tracks() {
		for _, w := range support {
			if inter := t.Interval.Intersect(w); !inter.Empty() {
				out.Append(inter, t.Label)
			}
		}
	}
	return out
}

// Rename returns a copy with labels substituted through mapping. Labels
// without an entry are kept as they are.
func (a *Annotation) Rename(mapping map[string]string) *Annotation {
	out := NewAnnotation()
	for _, t := range a.tracks {
		label := t.Label
		if to, ok := mapping[label]; ok {
			label = to
		}
		out.Append(t.Interval, label)
	}
	return out
}

// Overlap returns the regions where two or more tracks are active at
// once.
func (a *Annotation) Overlap() Timeline {
	tl := a.Timeline()
	points := tl.Boundaries()
	var out Timeline
	for k := 0; k < len(points)-1; k++ {
		slice := Interval{Start: points[k], End: points[k+1]}
		if slice.Empty() {
			continue
		}
		mid := (slice.Start + slice.End) / 2
		depth := 0
		for _, t := range a.tracks {
			if t.Interval.Contains(mid) {
				depth++
			}
		}
		if depth >= 2 {
			out = append(out, slice)
		}
	}
	return out.Support()
}

// ActiveAt returns the labels of every track containing t, sorted, with
// one entry per track.
func (a *Annotation) ActiveAt(t float64) []string {
	var out []string
	for _, tr := range a.tracks {
		if tr.Interval.Contains(t) {
			out = append(out, tr.Label)
		}
	}
	sort.Strings(out)
	return out
}
