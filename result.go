package capeval

import "github.com/jamesainslie/go-capeval/diarize"

// Result holds the scores from one evaluation.
type Result struct {
	// Scores maps each requested metric to its value.
	Scores map[Metric]float64

	// DER carries the full diarization breakdown when the der metric was
	// requested.
	DER *diarize.Breakdown

	// Errors lists the merged error records behind the DER breakdown, in
	// time order.
	Errors []diarize.ErrorRecord

	// RefSpeakers and HypSpeakers are the distinct speaker labels seen on
	// each side. The empty label stands for speech with no speaker tag.
	RefSpeakers []string
	HypSpeakers []string
}
