package pipeline

import (
	"fmt"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-filterchain/internal/store"
)

// FilterSpec describes a filter of a topology.
type FilterSpec struct {
	Name string
	Work WorkFunc
	// Duration is the expected duration of Work. It is only used for reporting.
	Duration time.Duration
}

// SleepFilter returns the spec of a filter sleeping for d.
func SleepFilter(name string, d time.Duration) FilterSpec {
	return FilterSpec{
		Name:     name,
		Work:     Sleep(d),
		Duration: d,
	}
}

// Topology is the directed acyclic graph of filters an instance is wired from.
// The filter without predecessor is the start filter, filters without successor end the chain.
type Topology struct {
	graph graph.Graph[string, FilterSpec]
	store store.CustomStore[string, FilterSpec]
}

func filterSpecHash(s FilterSpec) string {
	return s.Name
}

// NewTopology creates an empty topology.
func NewTopology() *Topology {
	s := store.NewOrderedStore[string, FilterSpec]()

	return &Topology{
		graph: graph.NewWithStore(filterSpecHash, s, graph.Directed(), graph.PreventCycles()),
		store: s,
	}
}

// Chain creates a linear topology, every filter notifying the next one.
func Chain(specs ...FilterSpec) (*Topology, error) {
	topo := NewTopology()
	for i, spec := range specs {
		err := topo.AddFilter(spec)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			err = topo.Link(specs[i-1].Name, spec.Name)
			if err != nil {
				return nil, err
			}
		}
	}

	return topo, nil
}

// SleepChain creates a linear topology of count filters named Filter1 to FilterN, each sleeping for work.
func SleepChain(count int, work time.Duration) (*Topology, error) {
	specs := make([]FilterSpec, count)
	for i := range specs {
		specs[i] = SleepFilter(fmt.Sprintf("Filter%d", i+1), work)
	}

	return Chain(specs...)
}

// AddFilter adds a filter to the topology.
func (t *Topology) AddFilter(spec FilterSpec) error {
	if spec.Name == "" {
		return errors.New("filter name must be set")
	}
	if spec.Work == nil {
		return errors.Errorf("filter %s: work must be set", spec.Name)
	}

	err := t.graph.AddVertex(spec, graph.VertexWeight(int(spec.Duration)))
	if err != nil {
		return errors.Wrapf(err, "unable to add filter %s", spec.Name)
	}

	return nil
}

// Link makes filter from notify filter to on completion.
func (t *Topology) Link(from, to string) error {
	for _, name := range []string{from, to} {
		if _, err := t.graph.Vertex(name); err != nil {
			return errors.Wrapf(ErrUnknownFilter, "link %s -> %s: %s", from, to, name)
		}
	}

	err := t.graph.AddEdge(from, to)
	if err != nil {
		return errors.Wrapf(err, "unable to link %s to %s", from, to)
	}

	return nil
}

// Filters returns the filter specs in insertion order.
func (t *Topology) Filters() ([]FilterSpec, error) {
	names, err := t.store.ListVertices()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list filters")
	}

	specs := make([]FilterSpec, len(names))
	for i, name := range names {
		specs[i], err = t.Filter(name)
		if err != nil {
			return nil, err
		}
	}

	return specs, nil
}

// Filter returns the spec of the filter called name.
func (t *Topology) Filter(name string) (FilterSpec, error) {
	spec, err := t.graph.Vertex(name)
	if err != nil {
		return FilterSpec{}, errors.Wrapf(ErrUnknownFilter, "%s", name)
	}

	return spec, nil
}

// Successors returns the filters notified by name, in the order they were linked.
func (t *Topology) Successors(name string) ([]string, error) {
	succ, err := t.store.Successors(name)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownFilter, "%s", name)
	}

	return succ, nil
}

// Start returns the name of the only filter without predecessor.
func (t *Topology) Start() (string, error) {
	names, err := t.store.ListVertices()
	if err != nil {
		return "", errors.Wrap(err, "unable to list filters")
	}
	if len(names) == 0 {
		return "", ErrEmptyTopology
	}

	var starts []string
	for _, name := range names {
		pred, err := t.store.Predecessors(name)
		if err != nil {
			return "", errors.Wrapf(err, "unable to get predecessors of %s", name)
		}
		if len(pred) == 0 {
			starts = append(starts, name)
		}
	}

	if len(starts) != 1 {
		return "", errors.Wrapf(ErrMultipleStarts, "found %v", starts)
	}

	return starts[0], nil
}

// Sinks returns the filters ending the chain.
func (t *Topology) Sinks() ([]string, error) {
	names, err := t.store.ListVertices()
	if err != nil {
		return nil, errors.Wrap(err, "unable to list filters")
	}

	var sinks []string
	for _, name := range names {
		succ, err := t.store.Successors(name)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to get successors of %s", name)
		}
		if len(succ) == 0 {
			sinks = append(sinks, name)
		}
	}

	return sinks, nil
}

// Size returns the number of filters and links.
func (t *Topology) Size() (filters, links int, err error) {
	filters, err = t.graph.Order()
	if err != nil {
		return 0, 0, errors.Wrap(err, "unable to count filters")
	}
	links, err = t.graph.Size()
	if err != nil {
		return 0, 0, errors.Wrap(err, "unable to count links")
	}

	return filters, links, nil
}

// Validate checks the topology can be wired into an instance.
// Cycles are rejected when links are added.
func (t *Topology) Validate() error {
	_, err := t.Start()

	return err
}
