// Package capeval scores hypothesis captions against a human-curated
// reference, producing diarization and transcription quality metrics
// with per-interval error attribution.
//
// # Quick Start
//
//	ref, err := caption.Load("reference.ass")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	hyp, err := caption.Load("hypothesis.ass")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := capeval.Evaluate(ref, hyp,
//	    capeval.WithCollar(0.25),
//	    capeval.WithMetrics(capeval.DER, capeval.WER),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("DER: %.4f  WER: %.4f\n", result.Scores[capeval.DER], result.Scores[capeval.WER])
//
// # Metrics
//
// Five metrics are supported: der (diarization error rate, with a full
// false-alarm/missed/confusion breakdown), jer (speaker-averaged Jaccard
// error rate), wer (word error rate over normalized transcripts), sca
// (speaker count accuracy) and scer (speaker counting error rate).
//
// # Thread Safety
//
// Evaluate is a pure function over its inputs and safe to call
// concurrently; each call builds its own timelines and normalizer.
package capeval
