package capeval

import (
	"fmt"
	"strings"
)

// Metric identifies one of the supported evaluation metrics.
type Metric string

// The closed set of supported metrics.
const (
	DER  Metric = "der"  // diarization error rate
	JER  Metric = "jer"  // Jaccard error rate
	WER  Metric = "wer"  // word error rate
	SCA  Metric = "sca"  // speaker count accuracy
	SCER Metric = "scer" // speaker counting error rate
)

// AllMetrics returns every supported metric in canonical order.
func AllMetrics() []Metric {
	return []Metric{DER, JER, WER, SCA, SCER}
}

// ParseMetric converts a metric name into its Metric value. Names are
// matched case-insensitively. Unknown names fail with ErrUnknownMetric.
func ParseMetric(name string) (Metric, error) {
	switch m := Metric(strings.ToLower(name)); m {
	case DER, JER, WER, SCA, SCER:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (supported: der, jer, wer, sca, scer)", ErrUnknownMetric, name)
}

// ParseMetrics converts a list of metric names, collapsing duplicates
// while keeping the first occurrence's position.
func ParseMetrics(names []string) ([]Metric, error) {
	seen := make(map[Metric]bool, len(names))
	metrics := make([]Metric, 0, len(names))
	for _, name := range names {
		m, err := ParseMetric(name)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// LowerIsBetter reports whether smaller values of the metric indicate
// better quality. Only speaker count accuracy improves upward.
func (m Metric) LowerIsBetter() bool {
	return m != SCA
}
