package drawer

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-filterchain/pkg/pipeline/measure"
	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

// pipelineDrawer draws the union of the topologies of every instance.
// Instances sharing a topology are drawn once.
type pipelineDrawer struct {
	Drawer
	m  measure.Measure
	mu sync.Mutex
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddFilter(model.StartFilter.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start filter to drawer")
	}
	err = pd.AddFilter(model.EndFilter.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end filter to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareLogic(_ *model.LogicInfo, filters []*model.FilterInfo, links []*model.LinkInfo) error {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	for _, filter := range filters {
		err := pd.AddFilter(filter.Name)
		if err != nil {
			return err
		}
	}

	if len(filters) > 0 {
		err := pd.AddLink(model.StartFilter.Name, filters[0].Name)
		if err != nil {
			return err
		}
	}

	for _, link := range links {
		target := model.EndFilter
		if !link.IsTerminal() {
			target = link.Target
		}
		err := pd.AddLink(link.Source.Name, target.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (pd *pipelineDrawer) OnDispatchError(_ *model.LogicInfo, _ error) error {
	return nil
}

func (pd *pipelineDrawer) OnLogicEnd(_ *model.LogicInfo, _ time.Duration, _ bool) error {
	return nil
}

func (pd *pipelineDrawer) OnFilterEnd(_ *model.FilterInfo, _ time.Duration, _ error) error {
	return nil
}

func (pd *pipelineDrawer) OnLinkFired(_ *model.LinkInfo, _ time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish(elapsed time.Duration) error {
	pd.mu.Lock()
	defer pd.mu.Unlock()

	err := pd.SetTotalTime(model.EndFilter.Name, elapsed)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns an option drawing the pipeline with drawer once every instance ended.
// When measure is not nil, its durations label the graph.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
