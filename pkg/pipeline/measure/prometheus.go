package measure

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/askiada/go-filterchain/pkg/pipeline"
	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

const namespace = "filterchain"

// PrometheusMeasure is a pipeline option exporting filter and instance metrics to Prometheus.
type PrometheusMeasure struct {
	FilterDuration  *prometheus.HistogramVec
	FiltersTotal    *prometheus.CounterVec
	DispatchLatency *prometheus.HistogramVec
	DispatchErrors  *prometheus.CounterVec
	LogicsPending   prometheus.Gauge
	LogicsTotal     *prometheus.CounterVec
	RunDuration     prometheus.Gauge
}

// NewPrometheusMeasure registers the collectors on reg.
func NewPrometheusMeasure(reg prometheus.Registerer) *PrometheusMeasure {
	factory := promauto.With(reg)

	return &PrometheusMeasure{
		FilterDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "filter_duration_seconds",
				Help:      "Duration of the work of a filter in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"filter"},
		),
		FiltersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "filters_total",
				Help:      "Total number of filters that completed their work",
			},
			[]string{"filter", "status"},
		),
		DispatchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_latency_seconds",
				Help:      "Time between a link notification and the start of the dispatched task",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"target"},
		),
		DispatchErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_errors_total",
				Help:      "Total number of instances that stopped waiting for their start filter",
			},
			[]string{"kind"},
		),
		LogicsPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "logics_pending",
				Help:      "Number of instances not terminal yet",
			},
		),
		LogicsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logics_total",
				Help:      "Total number of instances that became terminal",
			},
			[]string{"status"},
		),
		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Elapsed time of the last supervisor run",
			},
		),
	}
}

func (pm *PrometheusMeasure) New() error {
	return nil
}

func (pm *PrometheusMeasure) PrepareLogic(_ *model.LogicInfo, _ []*model.FilterInfo, _ []*model.LinkInfo) error {
	pm.LogicsPending.Inc()

	return nil
}

func (pm *PrometheusMeasure) OnDispatchError(_ *model.LogicInfo, err error) error {
	kind := "timeout"
	if errors.Is(err, pipeline.ErrDispatchCancelled) {
		kind = "cancelled"
	}
	pm.DispatchErrors.WithLabelValues(kind).Inc()

	return nil
}

func (pm *PrometheusMeasure) OnLogicEnd(_ *model.LogicInfo, _ time.Duration, failed bool) error {
	pm.LogicsPending.Dec()
	pm.LogicsTotal.WithLabelValues(status(failed)).Inc()

	return nil
}

func (pm *PrometheusMeasure) OnFilterEnd(filter *model.FilterInfo, computationDuration time.Duration, err error) error {
	pm.FilterDuration.WithLabelValues(filter.Name).Observe(computationDuration.Seconds())
	pm.FiltersTotal.WithLabelValues(filter.Name, status(err != nil)).Inc()

	return nil
}

func (pm *PrometheusMeasure) OnLinkFired(link *model.LinkInfo, latency time.Duration) error {
	target := model.EndFilter.Name
	if !link.IsTerminal() {
		target = link.Target.Name
	}
	pm.DispatchLatency.WithLabelValues(target).Observe(latency.Seconds())

	return nil
}

func (pm *PrometheusMeasure) Finish(elapsed time.Duration) error {
	pm.RunDuration.Set(elapsed.Seconds())

	return nil
}

func status(failed bool) string {
	if failed {
		return "failed"
	}

	return "ok"
}

var _ model.PipelineOption = (*PrometheusMeasure)(nil)
