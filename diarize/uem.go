package diarize

import "github.com/jamesainslie/go-capeval/timeline"

// Uemify crops both annotations to the coverage region surviving collar
// extrusion around reference boundaries. With skipOverlap, regions where
// the reference has concurrent speakers are excluded as well. The
// returned timeline is the surviving coverage region.
func Uemify(ref, hyp *timeline.Annotation, collar float64, skipOverlap bool) (*timeline.Annotation, *timeline.Annotation, timeline.Timeline) {
	uem := extrude(defaultUEM(ref, hyp), ref, collar, skipOverlap)
	return ref.Crop(uem), hyp.Crop(uem), uem
}

// defaultUEM spans the hull of both annotations.
func defaultUEM(ref, hyp *timeline.Annotation) timeline.Timeline {
	switch {
	case ref.Empty() && hyp.Empty():
		return nil
	case ref.Empty():
		return timeline.Timeline{hyp.Extent()}
	case hyp.Empty():
		return timeline.Timeline{ref.Extent()}
	default:
		return timeline.Timeline{ref.Extent().Hull(hyp.Extent())}
	}
}

// extrude removes the ±collar/2 band around every reference boundary
// from the coverage region, plus reference overlap regions when
// skipOverlap is set. Collar 0 without skipOverlap is the identity.
func extrude(uem timeline.Timeline, ref *timeline.Annotation, collar float64, skipOverlap bool) timeline.Timeline {
	if collar == 0 && !skipOverlap {
		return uem
	}
	var bands timeline.Timeline
	if collar > 0 {
		half := collar / 2
		for _, iv := range ref.Timeline() {
			bands = append(bands,
				timeline.Interval{Start: iv.Start - half, End: iv.Start + half},
				timeline.Interval{Start: iv.End - half, End: iv.End + half},
			)
		}
	}
	if skipOverlap {
		bands = append(bands, ref.Overlap()...)
	}
	return bands.Support().Gaps(uem)
}
