package model

import "time"

// LogicInfo identifies a pipeline instance.
type LogicInfo struct {
	Name  string
	RunID string
}

// FilterInfo identifies a filter inside a pipeline instance.
type FilterInfo struct {
	Logic *LogicInfo
	Name  string
	// Work is the declared duration of the filter work, zero when unknown.
	Work time.Duration
}

// LinkInfo identifies an edge between two filters. Target is nil for the terminal edge of a chain.
type LinkInfo struct {
	Source *FilterInfo
	Target *FilterInfo
}

// IsTerminal reports whether the link ends the chain.
func (l *LinkInfo) IsTerminal() bool {
	return l.Target == nil
}

var (
	// StartFilter is the pseudo filter every instance starts from.
	StartFilter = &FilterInfo{Name: "start"}
	// EndFilter is the pseudo filter every terminal link points to.
	EndFilter = &FilterInfo{Name: "end"}
)
