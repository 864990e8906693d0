package measure

import (
	"time"

	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartFilter.Name)
	pm.AddMetric(model.EndFilter.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareLogic(_ *model.LogicInfo, filters []*model.FilterInfo, _ []*model.LinkInfo) error {
	for _, filter := range filters {
		pm.AddMetric(filter.Name)
	}

	return nil
}

func (pm *pipelineMeasure) OnDispatchError(_ *model.LogicInfo, _ error) error {
	return nil
}

func (pm *pipelineMeasure) OnLogicEnd(_ *model.LogicInfo, elapsed time.Duration, failed bool) error {
	mt := pm.AddMetric(model.EndFilter.Name)
	mt.AddDuration(elapsed)
	mt.SetTotalDuration(elapsed)
	if failed {
		mt.AddFailure()
	}

	return nil
}

func (pm *pipelineMeasure) OnFilterEnd(filter *model.FilterInfo, computationDuration time.Duration, err error) error {
	mt := pm.AddMetric(filter.Name)
	mt.AddDuration(computationDuration)
	if err != nil {
		mt.AddFailure()
	}

	return nil
}

func (pm *pipelineMeasure) OnLinkFired(link *model.LinkInfo, latency time.Duration) error {
	target := model.EndFilter
	if !link.IsTerminal() {
		target = link.Target
	}
	pm.AddMetric(target.Name).AddTransportDuration(link.Source.Name, latency)

	return nil
}

func (pm *pipelineMeasure) Finish(_ time.Duration) error {
	return nil
}

// PipelineMeasure returns an option recording filter durations and link latencies into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
