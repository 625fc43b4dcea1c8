// Package textgrid writes Praat TextGrid files in the long text format.
// Only interval tiers are supported; that is all the debug reporter
// needs.
package textgrid

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Interval is one labeled span inside a tier.
type Interval struct {
	XMin float64
	XMax float64
	Text string
}

// Tier is a named sequence of intervals over [XMin, XMax].
type Tier struct {
	Name      string
	XMin      float64
	XMax      float64
	Intervals []Interval
}

// TextGrid is an ordered set of tiers sharing a global time range.
type TextGrid struct {
	XMin  float64
	XMax  float64
	Tiers []Tier
}

// AddTier appends a tier. The grid's range grows to cover it.
func (tg *TextGrid) AddTier(t Tier) {
	if t.XMin < tg.XMin {
		tg.XMin = t.XMin
	}
	if t.XMax > tg.XMax {
		tg.XMax = t.XMax
	}
	tg.Tiers = append(tg.Tiers, t)
}

// WriteFile writes the grid to path in long format.
func (tg *TextGrid) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write textgrid: %w", err)
	}
	if err := tg.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("write textgrid %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write textgrid %s: %w", path, err)
	}
	return nil
}

// Write renders the grid in Praat's long text format. Gaps between
// intervals are filled with empty-text intervals so every tier is
// contiguous over its range.
func (tg *TextGrid) Write(w io.Writer) error {
	var b strings.Builder
	b.WriteString("File type = \"ooTextFile\"\n")
	b.WriteString("Object class = \"TextGrid\"\n\n")
	fmt.Fprintf(&b, "xmin = %s\n", fnum(tg.XMin))
	fmt.Fprintf(&b, "xmax = %s\n", fnum(tg.XMax))
	b.WriteString("tiers? <exists>\n")
	fmt.Fprintf(&b, "size = %d\n", len(tg.Tiers))
	b.WriteString("item []:\n")

	for i, tier := range tg.Tiers {
		intervals := fillGaps(tier)
		fmt.Fprintf(&b, "    item [%d]:\n", i+1)
		b.WriteString("        class = \"IntervalTier\"\n")
		fmt.Fprintf(&b, "        name = %s\n", quote(tier.Name))
		fmt.Fprintf(&b, "        xmin = %s\n", fnum(tier.XMin))
		fmt.Fprintf(&b, "        xmax = %s\n", fnum(tier.XMax))
		fmt.Fprintf(&b, "        intervals: size = %d\n", len(intervals))
		for j, iv := range intervals {
			fmt.Fprintf(&b, "        intervals [%d]:\n", j+1)
			fmt.Fprintf(&b, "            xmin = %s\n", fnum(iv.XMin))
			fmt.Fprintf(&b, "            xmax = %s\n", fnum(iv.XMax))
			fmt.Fprintf(&b, "            text = %s\n", quote(iv.Text))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fillGaps orders a tier's intervals and inserts empty intervals where
// the tier range is not covered.
func fillGaps(tier Tier) []Interval {
	sorted := make([]Interval, len(tier.Intervals))
	copy(sorted, tier.Intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].XMin != sorted[j].XMin {
			return sorted[i].XMin < sorted[j].XMin
		}
		return sorted[i].XMax < sorted[j].XMax
	})

	out := make([]Interval, 0, 2*len(sorted)+1)
	cursor := tier.XMin
	for _, iv := range sorted {
		if iv.XMin > cursor {
			out = append(out, Interval{XMin: cursor, XMax: iv.XMin})
		}
		out = append(out, iv)
		if iv.XMax > cursor {
			cursor = iv.XMax
		}
	}
	if cursor < tier.XMax {
		out = append(out, Interval{XMin: cursor, XMax: tier.XMax})
	}
	return out
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
