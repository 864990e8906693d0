package measure_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-filterchain/pkg/pipeline"
	"github.com/askiada/go-filterchain/pkg/pipeline/measure"
	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

func TestPrometheusMeasureHooks(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	pm := measure.NewPrometheusMeasure(reg)
	require.NoError(t, pm.New())

	logic := &model.LogicInfo{Name: "01"}
	filter := &model.FilterInfo{Logic: logic, Name: "Filter1"}

	require.NoError(t, pm.PrepareLogic(logic, []*model.FilterInfo{filter}, nil))
	require.NoError(t, pm.PrepareLogic(&model.LogicInfo{Name: "02"}, nil, nil))
	assert.InDelta(t, 2, testutil.ToFloat64(pm.LogicsPending), 0)

	require.NoError(t, pm.OnFilterEnd(filter, 10*time.Millisecond, nil))
	require.NoError(t, pm.OnFilterEnd(filter, 10*time.Millisecond, assert.AnError))
	assert.InDelta(t, 1, testutil.ToFloat64(pm.FiltersTotal.WithLabelValues("Filter1", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.FiltersTotal.WithLabelValues("Filter1", "failed")), 0)

	require.NoError(t, pm.OnDispatchError(logic, errors.Wrap(pipeline.ErrDispatchTimeout, "01")))
	require.NoError(t, pm.OnDispatchError(logic, errors.Wrap(pipeline.ErrDispatchCancelled, "01")))
	assert.InDelta(t, 1, testutil.ToFloat64(pm.DispatchErrors.WithLabelValues("timeout")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.DispatchErrors.WithLabelValues("cancelled")), 0)

	require.NoError(t, pm.OnLinkFired(&model.LinkInfo{Source: model.StartFilter, Target: filter}, time.Microsecond))
	require.NoError(t, pm.OnLinkFired(&model.LinkInfo{Source: filter}, time.Microsecond))
	assert.Equal(t, 2, testutil.CollectAndCount(pm.DispatchLatency))

	require.NoError(t, pm.OnLogicEnd(logic, time.Second, false))
	require.NoError(t, pm.OnLogicEnd(logic, time.Second, true))
	assert.InDelta(t, 0, testutil.ToFloat64(pm.LogicsPending), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.LogicsTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pm.LogicsTotal.WithLabelValues("failed")), 0)

	require.NoError(t, pm.Finish(1500*time.Millisecond))
	assert.InDelta(t, 1.5, testutil.ToFloat64(pm.RunDuration), 1e-9)
}

func TestPrometheusMeasureSupervisorRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	pm := measure.NewPrometheusMeasure(reg)

	factory := func(name string) (*pipeline.Logic, error) {
		return pipeline.NewChainLogic(name, []pipeline.FilterSpec{
			pipeline.SleepFilter("Filter1", time.Millisecond),
			pipeline.SleepFilter("Filter2", time.Millisecond),
		}, pipeline.LogicPipelineOptions(pm))
	}

	s, err := pipeline.NewSupervisor(factory,
		pipeline.SupervisorInstances(5),
		pipeline.SupervisorPipelineOptions(pm),
	)
	require.NoError(t, err)

	_, err = s.Run(t.Context())
	require.NoError(t, err)

	assert.InDelta(t, 5, testutil.ToFloat64(pm.LogicsTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(pm.FiltersTotal.WithLabelValues("Filter2", "ok")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(pm.LogicsPending), 0)
	assert.Positive(t, testutil.ToFloat64(pm.RunDuration))

	count, err := testutil.GatherAndCount(reg, "filterchain_logics_total", "filterchain_filters_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
