// Package report renders evaluation results as markdown tables or JSON.
// Both output formats keep the metric order the caller requested.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	capeval "github.com/jamesainslie/go-capeval"
	"github.com/jamesainslie/go-capeval/diarize"
)

// derComponents mirrors the detailed diarization breakdown in the JSON
// report. The key names match the text report's column headers.
type derComponents struct {
	Rate       float64 `json:"diarization error rate"`
	FalseAlarm float64 `json:"false alarm"`
	Missed     float64 `json:"missed detection"`
	Confusion  float64 `json:"confusion"`
	Correct    float64 `json:"correct"`
	Total      float64 `json:"total"`
}

type document struct {
	DER  *derComponents `json:"der,omitempty"`
	JER  *float64       `json:"jer,omitempty"`
	WER  *float64       `json:"wer,omitempty"`
	SCA  *float64       `json:"sca,omitempty"`
	SCER *float64       `json:"scer,omitempty"`
}

// WriteJSON renders the requested metrics as an indented JSON document.
// The der entry carries the full breakdown rather than the bare rate.
func WriteJSON(w io.Writer, metrics []capeval.Metric, result *capeval.Result) error {
	var doc document
	for _, m := range metrics {
		score, ok := result.Scores[m]
		if !ok {
			continue
		}
		switch m {
		case capeval.DER:
			bd := result.DER
			doc.DER = &derComponents{
				Rate:       bd.Rate,
				FalseAlarm: bd.FalseAlarm,
				Missed:     bd.Missed,
				Confusion:  bd.Confusion,
				Correct:    bd.Correct,
				Total:      bd.Total,
			}
		case capeval.JER:
			doc.JER = &score
		case capeval.WER:
			doc.WER = &score
		case capeval.SCA:
			doc.SCA = &score
		case capeval.SCER:
			doc.SCER = &score
		}
	}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// WriteText renders the scores as markdown tables. When der was
// computed its component table precedes the summary row, and a speaker
// diff follows whenever the speaker count metrics disagree.
func WriteText(w io.Writer, metrics []capeval.Metric, result *capeval.Result, modelName string) {
	display := modelName
	if display == "" {
		display = "-"
	}

	if result.DER != nil {
		writeDERComponents(w, display, result.DER)
	}

	names := []string{"Model"}
	values := []string{display}
	for _, m := range metrics {
		score, ok := result.Scores[m]
		if !ok {
			continue
		}
		arrow := "↓"
		if !m.LowerIsBetter() {
			arrow = "↑"
		}
		names = append(names, fmt.Sprintf("%s %s", strings.ToUpper(string(m)), arrow))
		values = append(values, fmt.Sprintf("%.4f (%5.2f%%)", score, score*100))
	}
	writeRow(w, names)
	writeSeparator(w, len(names))
	writeRow(w, values)

	writeSpeakerDiff(w, result)
}

func writeDERComponents(w io.Writer, display string, bd *diarize.Breakdown) {
	fmt.Fprintf(w, "\nDetailed DER Components:\n")
	header := []string{
		"Model", "DER", "false alarm (s)", "missed detection (s)",
		"confusion (s)", "correct (s)", "total (s)",
	}
	values := []string{
		display,
		fmt.Sprintf("%.4f", bd.Rate),
		fmt.Sprintf("%.4f", bd.FalseAlarm),
		fmt.Sprintf("%.4f", bd.Missed),
		fmt.Sprintf("%.4f", bd.Confusion),
		fmt.Sprintf("%.4f", bd.Correct),
		fmt.Sprintf("%.4f", bd.Total),
	}
	fmt.Fprintln(w, "Metric Details:")
	writeRow(w, header)
	writeSeparator(w, len(header))
	writeRow(w, values)
	fmt.Fprintln(w)
}

func writeRow(w io.Writer, cells []string) {
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}

func writeSeparator(w io.Writer, n int) {
	cells := make([]string, n)
	for i := range cells {
		cells[i] = "--------"
	}
	fmt.Fprintf(w, "|%s|\n", strings.Join(cells, "|"))
}

// writeSpeakerDiff lists speakers missing from or extra in the
// hypothesis. Untagged speech does not count as a speaker here.
func writeSpeakerDiff(w io.Writer, result *capeval.Result) {
	sca, ok := result.Scores[capeval.SCA]
	if !ok {
		sca = 1
	}
	scer := result.Scores[capeval.SCER]
	if sca == 1 && scer == 0 {
		return
	}

	missing := diffLabels(result.RefSpeakers, result.HypSpeakers)
	extra := diffLabels(result.HypSpeakers, result.RefSpeakers)
	if len(missing) == 0 && len(extra) == 0 {
		return
	}

	fmt.Fprintf(w, "\nSpeaker Diff:\n")
	if len(missing) > 0 {
		fmt.Fprintf(w, "  Missing: %s\n", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		fmt.Fprintf(w, "  Extra:   %s\n", strings.Join(extra, ", "))
	}
}

func diffLabels(a, b []string) []string {
	present := make(map[string]bool, len(b))
	for _, s := range b {
		present[s] = true
	}
	var out []string
	for _, s := range a {
		if s == "" || present[s] {
			continue
		}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
