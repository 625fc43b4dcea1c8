package capeval

import "errors"

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrUnknownMetric indicates a metric name outside the supported set.
	ErrUnknownMetric = errors.New("capeval: unknown metric")

	// ErrInsufficientData indicates the reference carries no scoreable
	// speech or text for a requested metric.
	ErrInsufficientData = errors.New("capeval: insufficient reference data")
)
