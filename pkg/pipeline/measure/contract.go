// Package measure collects durations of filters and links while pipeline instances run.
package measure

import "time"

// Measure holds one Metric per filter name, shared by every instance.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric aggregates the durations of one filter.
type Metric interface {
	AddDuration(elapsed time.Duration)
	AddFailure()
	AddTransportDuration(inputFilterName string, elapsed time.Duration)
	AVGDuration() time.Duration
	AVGTransportDuration() map[string]*TransportInfo
	SetTotalDuration(endDuration time.Duration)
	GetTotalDuration() time.Duration
	AllTransports() map[string]*TransportInfo
	Count() int64
	Failures() int64
}
