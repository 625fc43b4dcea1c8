package capeval

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/go-capeval/align"
	"github.com/jamesainslie/go-capeval/caption"
	"github.com/jamesainslie/go-capeval/diarize"
	"github.com/jamesainslie/go-capeval/normalize"
	"github.com/jamesainslie/go-capeval/textgrid"
	"github.com/jamesainslie/go-capeval/timeline"
)

// Sentence streams are joined with a sentinel the normalizers never
// emit, so the alignment recovers event boundaries.
const (
	sentenceMark = "❅"
	gapMark      = "-"
)

// printSentenceDiff aligns the two event streams character by character
// and prints every sentence group that differs ignoring case, with the
// time range each side's events cover.
func printSentenceDiff(w io.Writer, refEvents, hypEvents []caption.Event, norm *normalize.Normalizer, skipEvents bool) {
	refKept, refSentences := sentenceEvents(refEvents, norm, skipEvents)
	hypKept, hypSentences := sentenceEvents(hypEvents, norm, skipEvents)

	pairs := align.Align(
		splitRunes(strings.Join(refSentences, sentenceMark)),
		splitRunes(strings.Join(hypSentences, sentenceMark)),
		gapMark, true)

	groupStart := 0
	rstart, hstart := 0, 0
	rend, hend := 0, 0
	for k, p := range pairs {
		if p.Ref == sentenceMark {
			rend++
		}
		if p.Hyp == sentenceMark {
			hend++
		}
		if p.Ref != sentenceMark || p.Hyp != sentenceMark {
			continue
		}
		if group := pairs[groupStart:k]; groupDiffers(group) {
			var refText, hypText strings.Builder
			for _, g := range group {
				refText.WriteString(g.Ref)
				hypText.WriteString(g.Hyp)
			}
			fmt.Fprintf(w, "[%.2f, %.2f] REF: %s\n",
				refKept[rstart].Start(), refKept[rend-1].End(), refText.String())
			fmt.Fprintf(w, "[%.2f, %.2f] HYP: %s\n\n",
				hypKept[hstart].Start(), hypKept[hend-1].End(), hypText.String())
		}
		groupStart = k + 1
		rstart, hstart = rend, hend
	}
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func groupDiffers(group []align.Pair) bool {
	for _, p := range group {
		if !strings.EqualFold(p.Ref, p.Hyp) {
			return true
		}
	}
	return false
}

// printErrorTable writes one line per merged error record with the
// hypothesis text overlapping it, then the per-cause duration summary.
func printErrorTable(w io.Writer, records []diarize.ErrorRecord, mapping diarize.Mapping, hypEvents []caption.Event, collar float64, skipEvents bool) {
	if len(records) == 0 {
		fmt.Fprintf(w, "\nDER Error Details: no errors found\n")
		return
	}

	context := hypContext(hypEvents, skipEvents)

	fmt.Fprintf(w, "\n=== DER Error Segments (collar=%gs) ===\n", collar)
	fmt.Fprintf(w, "Speaker mapping: %v\n", mapping)
	fmt.Fprintf(w, "\n%20s  %-5s  %-20s  %-20s  %6s  Text\n", "Time", "Type", "Ref", "Hyp", "Dur")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	var fa, miss, conf float64
	for _, rec := range records {
		fa += rec.FalseAlarm
		miss += rec.Missed
		conf += rec.Confusion
		fmt.Fprintf(w, "[%7.2f-%7.2f]  %-5s  %-20s  %-20s  %5.2fs  %s\n",
			rec.Start, rec.End, rec.Kind(), labelSet(rec.RefLabels), labelSet(rec.HypLabels),
			rec.Duration(), truncate(context(rec.Start, rec.End), 60))
	}

	fmt.Fprintf(w, "\nDER Error Summary: FA=%.2fs  MISS=%.2fs  CONF=%.2fs  total=%.2fs\n",
		fa, miss, conf, fa+miss+conf)
	fmt.Fprintf(w, "Error count: %d segments\n\n", len(records))
}

// hypContext returns a lookup joining the raw text of every hypothesis
// event overlapping a span.
func hypContext(events []caption.Event, skipEvents bool) func(start, end float64) string {
	type span struct {
		start, end float64
		text       string
	}
	var spans []span
	for _, ev := range events {
		if skipEvents && normalize.IsEventOnly(normalize.Clean(ev.Text)) {
			continue
		}
		text := ev.Text
		if ev.Name != "" {
			text = ev.Name + " " + ev.Text
		}
		spans = append(spans, span{ev.Start(), ev.End(), text})
	}
	return func(start, end float64) string {
		var texts []string
		for _, s := range spans {
			if s.start < end && s.end > start {
				texts = append(texts, s.text)
			}
		}
		return strings.Join(texts, " | ")
	}
}

func labelSet(labels []string) string {
	if len(labels) == 0 {
		return "-"
	}
	return strings.Join(labels, ",")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// writeDebugGrids renders the raw annotations, the caption texts, and
// the merged error records into one combined TextGrid plus one file per
// error type, placed next to the hypothesis caption file. Mixed records
// appear in all three per-type files.
func writeDebugGrids(w io.Writer, refAnn, hypAnn *timeline.Annotation, refEvents, hypEvents []caption.Event, records []diarize.ErrorRecord, mapping diarize.Mapping, hypPath string, collar float64, skipEvents bool) error {
	display := make(map[string]string, mapping.Len())
	for _, p := range mapping.Pairs() {
		display[p[0]] = p[1]
	}
	mappedHyp := hypAnn.Rename(display)

	var duration float64
	if b := refAnn.Timeline().Union(mappedHyp.Timeline()).Boundaries(); len(b) > 0 {
		duration = b[len(b)-1]
	}

	var combined textgrid.TextGrid
	for _, tier := range speakerTiers(refAnn, "ref", duration) {
		combined.AddTier(tier)
	}
	for _, tier := range textLaneTiers(refEvents, "ref_text", duration, skipEvents) {
		combined.AddTier(tier)
	}
	for _, tier := range speakerTiers(mappedHyp, "hyp", duration) {
		combined.AddTier(tier)
	}
	for _, tier := range textLaneTiers(hypEvents, "hyp_text", duration, skipEvents) {
		combined.AddTier(tier)
	}

	errTier := textgrid.Tier{Name: "error", XMin: 0, XMax: duration}
	for _, rec := range records {
		errTier.Intervals = append(errTier.Intervals, textgrid.Interval{
			XMin: rec.Start, XMax: rec.End, Text: errorLabel(rec),
		})
	}
	combined.AddTier(errTier)

	path := gridPath(hypPath, collar, "")
	if err := combined.WriteFile(path); err != nil {
		return err
	}
	if w != nil {
		fmt.Fprintf(w, "DER debug TextGrid: %s\n", path)
	}

	for _, etype := range []string{"FA", "MISS", "CONF"} {
		tier := textgrid.Tier{Name: etype, XMin: 0, XMax: duration}
		for _, rec := range records {
			if kind := rec.Kind(); kind != etype && kind != "MIX" {
				continue
			}
			tier.Intervals = append(tier.Intervals, textgrid.Interval{
				XMin: rec.Start, XMax: rec.End, Text: typedErrorLabel(rec, etype),
			})
		}
		if len(tier.Intervals) == 0 {
			continue
		}
		var grid textgrid.TextGrid
		for _, t := range combined.Tiers {
			if strings.HasPrefix(t.Name, "ref") || strings.HasPrefix(t.Name, "hyp") {
				grid.AddTier(t)
			}
		}
		grid.AddTier(tier)
		path := gridPath(hypPath, collar, etype)
		if err := grid.WriteFile(path); err != nil {
			return err
		}
		if w != nil {
			fmt.Fprintf(w, "DER %s TextGrid: %s\n", etype, path)
		}
	}
	return nil
}

// speakerTiers groups an annotation's tracks into one tier per speaker.
// The tier for untagged speech is named "<prefix>_unknown" while its
// intervals keep the empty label.
func speakerTiers(ann *timeline.Annotation, prefix string, duration float64) []textgrid.Tier {
	bySpeaker := make(map[string][]textgrid.Interval)
	for _, tr := range ann.Tracks() {
		name := tr.Label
		if name == "" {
			name = "unknown"
		}
		bySpeaker[name] = append(bySpeaker[name], textgrid.Interval{
			XMin: tr.Interval.Start, XMax: tr.Interval.End, Text: tr.Label,
		})
	}
	names := make([]string, 0, len(bySpeaker))
	for name := range bySpeaker {
		names = append(names, name)
	}
	sort.Strings(names)

	tiers := make([]textgrid.Tier, 0, len(names))
	for _, name := range names {
		tiers = append(tiers, textgrid.Tier{
			Name: prefix + "_" + name, XMin: 0, XMax: duration, Intervals: bySpeaker[name],
		})
	}
	return tiers
}

// textLaneTiers stacks raw event texts into non-overlapping lanes. The
// first lane takes the bare prefix as its name, later lanes append _2,
// _3 and so on.
func textLaneTiers(events []caption.Event, prefix string, duration float64, skipEvents bool) []textgrid.Tier {
	var lanes [][]textgrid.Interval
	for _, ev := range events {
		if skipEvents && normalize.IsEventOnly(normalize.Clean(ev.Text)) {
			continue
		}
		iv := textgrid.Interval{XMin: ev.Start(), XMax: ev.End(), Text: ev.Text}
		placed := false
		for i := range lanes {
			if n := len(lanes[i]); n == 0 || lanes[i][n-1].XMax <= iv.XMin {
				lanes[i] = append(lanes[i], iv)
				placed = true
				break
			}
		}
		if !placed {
			lanes = append(lanes, []textgrid.Interval{iv})
		}
	}

	tiers := make([]textgrid.Tier, 0, len(lanes))
	for i, lane := range lanes {
		name := prefix
		if i > 0 {
			name = fmt.Sprintf("%s_%d", prefix, i+1)
		}
		tiers = append(tiers, textgrid.Tier{Name: name, XMin: 0, XMax: duration, Intervals: lane})
	}
	return tiers
}

// errorLabel formats a record for the combined grid's error tier.
func errorLabel(rec diarize.ErrorRecord) string {
	dur := rec.Duration()
	switch rec.Kind() {
	case "MISS":
		return fmt.Sprintf("MISS %.2fs ref=%s", dur, labelSet(rec.RefLabels))
	case "FA":
		return fmt.Sprintf("FA %.2fs hyp=%s", dur, labelSet(rec.HypLabels))
	case "CONF":
		return fmt.Sprintf("CONF %.2fs ref=%s hyp=%s", dur, labelSet(rec.RefLabels), labelSet(rec.HypLabels))
	default:
		return fmt.Sprintf("MIX %.2fs fa=%.2f miss=%.2f conf=%.2f", dur, rec.FalseAlarm, rec.Missed, rec.Confusion)
	}
}

// typedErrorLabel formats a record for a per-type grid. Mixed records
// borrow the group's format.
func typedErrorLabel(rec diarize.ErrorRecord, etype string) string {
	dur := rec.Duration()
	switch etype {
	case "FA":
		return fmt.Sprintf("FA %.2fs hyp=%s", dur, labelSet(rec.HypLabels))
	case "MISS":
		return fmt.Sprintf("MISS %.2fs ref=%s", dur, labelSet(rec.RefLabels))
	default:
		return fmt.Sprintf("CONF %.2fs ref=%s hyp=%s", dur, labelSet(rec.RefLabels), labelSet(rec.HypLabels))
	}
}

// gridPath swaps the caption file's extension for the collar-stamped
// TextGrid suffix, with "." in the collar value written as "_".
func gridPath(hypPath string, collar float64, etype string) string {
	collarStr := strings.ReplaceAll(fmt.Sprintf("%.2f", collar), ".", "_")
	suffix := ".der_collar" + collarStr
	if etype != "" {
		suffix += "_" + etype
	}
	return strings.TrimSuffix(hypPath, filepath.Ext(hypPath)) + suffix + ".TextGrid"
}
