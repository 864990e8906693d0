// Package drawer renders the topology of a pipeline instance as a Graphviz DOT file.
package drawer

import (
	"time"

	"github.com/askiada/go-filterchain/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddFilter adds a filter to the pipeline drawer. Adding a filter twice is not an error.
	AddFilter(name string) error
	// AddLink adds a link between two filters. Adding a link twice is not an error.
	AddLink(sourceName, targetName string) error
	// Draw writes the pipeline graph.
	Draw() error
	// SetTotalTime sets the total time for the filter.
	SetTotalTime(name string, total time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
