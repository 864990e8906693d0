package model

import "time"

// PipelineOption defines the interface for options observing pipeline instances.
//
// Hooks can be called concurrently from many instances and filters.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineLogicOption
	pipelineFilterOption
	pipelineLinkOption

	// Finish runs after every instance reached its terminal state.
	Finish(elapsed time.Duration) error
}

// pipelineLogicOption defines the interface for options at the instance level.
type pipelineLogicOption interface {
	// PrepareLogic runs once the instance topology is wired, before it is executed.
	PrepareLogic(logic *LogicInfo, filters []*FilterInfo, links []*LinkInfo) error
	// OnDispatchError runs when the instance stopped waiting for its start filter.
	OnDispatchError(logic *LogicInfo, err error) error
	// OnLogicEnd runs exactly once, when the instance becomes terminal.
	OnLogicEnd(logic *LogicInfo, elapsed time.Duration, failed bool) error
}

// pipelineFilterOption defines the interface for options at the filter level.
type pipelineFilterOption interface {
	// OnFilterEnd runs everytime a filter completed its work, before its observers are notified.
	OnFilterEnd(filter *FilterInfo, computationDuration time.Duration, err error) error
}

// pipelineLinkOption defines the interface for options at the link level.
type pipelineLinkOption interface {
	// OnLinkFired runs when the task dispatched by a link starts, latency is the time
	// elapsed since the link was notified. The start of an instance fires a link from StartFilter.
	OnLinkFired(link *LinkInfo, latency time.Duration) error
}
