package pipeline

import (
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// CriticalPath returns the path from the start filter to a sink with the longest declared duration.
// It bounds the time an instance needs to become terminal, scheduling overhead aside.
func (t *Topology) CriticalPath() ([]string, time.Duration, error) {
	if err := t.Validate(); err != nil {
		return nil, 0, err
	}

	order, err := graph.TopologicalSort(t.graph)
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to sort filters")
	}

	total := make(map[string]time.Duration, len(order))
	prev := make(map[string]string, len(order))

	for _, name := range order {
		spec, err := t.Filter(name)
		if err != nil {
			return nil, 0, err
		}

		preds, err := t.store.Predecessors(name)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "unable to get predecessors of %s", name)
		}

		var longest time.Duration
		for _, pred := range preds {
			if _, ok := prev[name]; !ok || total[pred] > longest {
				longest = total[pred]
				prev[name] = pred
			}
		}
		total[name] = longest + spec.Duration
	}

	sinks, err := t.Sinks()
	if err != nil {
		return nil, 0, err
	}

	last := sinks[0]
	for _, sink := range sinks[1:] {
		if total[sink] > total[last] {
			last = sink
		}
	}

	path := []string{last}
	for curr := last; ; {
		p, ok := prev[curr]
		if !ok {
			break
		}
		path = append([]string{p}, path...)
		curr = p
	}

	return path, total[last], nil
}
