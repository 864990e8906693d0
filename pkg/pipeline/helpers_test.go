package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/askiada/go-filterchain/pkg/pipeline"
	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

type event struct {
	kind   string
	logic  string
	filter string
	err    error
	failed bool
	at     time.Time
}

// recorder is a pipeline option keeping every event it is notified of.
type recorder struct {
	mu       sync.Mutex
	events   []event
	news     int
	finishes int
	seq      *sequence
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.at = time.Now()
	r.events = append(r.events, e)
}

func (r *recorder) New() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.news++

	return nil
}

func (r *recorder) PrepareLogic(logic *model.LogicInfo, _ []*model.FilterInfo, _ []*model.LinkInfo) error {
	r.add(event{kind: "prepare", logic: logic.Name})

	return nil
}

func (r *recorder) OnDispatchError(logic *model.LogicInfo, err error) error {
	r.add(event{kind: "dispatch error", logic: logic.Name, err: err})

	return nil
}

func (r *recorder) OnLogicEnd(logic *model.LogicInfo, _ time.Duration, failed bool) error {
	r.add(event{kind: "logic end", logic: logic.Name, failed: failed})

	return nil
}

func (r *recorder) OnFilterEnd(filter *model.FilterInfo, _ time.Duration, err error) error {
	if r.seq != nil {
		r.seq.add("notify " + filter.Name)
	}
	r.add(event{kind: "filter end", logic: filter.Logic.Name, filter: filter.Name, err: err})

	return nil
}

func (r *recorder) OnLinkFired(link *model.LinkInfo, _ time.Duration) error {
	target := model.EndFilter.Name
	if !link.IsTerminal() {
		target = link.Target.Name
	}
	r.add(event{kind: "link fired", filter: target})

	return nil
}

func (r *recorder) Finish(_ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishes++

	return nil
}

// count returns the number of events of kind, for logic when it is not empty.
func (r *recorder) count(kind, logic string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, e := range r.events {
		if e.kind == kind && (logic == "" || e.logic == logic) {
			total++
		}
	}

	return total
}

func (r *recorder) filtersEnded(logic string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var names []string
	for _, e := range r.events {
		if e.kind == "filter end" && e.logic == logic {
			names = append(names, e.filter)
		}
	}

	return names
}

var _ model.PipelineOption = (*recorder)(nil)

// sequence is an ordered log shared by work functions and hooks.
type sequence struct {
	mu      sync.Mutex
	entries []string
}

func (s *sequence) add(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *sequence) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]string, len(s.entries))
	copy(res, s.entries)

	return res
}

func (s *sequence) filter(t *testing.T, name string, d time.Duration) pipeline.FilterSpec {
	t.Helper()

	return pipeline.FilterSpec{
		Name: name,
		Work: func(ctx context.Context) error {
			s.add("start " + name)
			time.Sleep(d)
			s.add("end " + name)

			return nil
		},
		Duration: d,
	}
}

func failingFilter(t *testing.T, name string, err error) pipeline.FilterSpec {
	t.Helper()

	return pipeline.FilterSpec{
		Name: name,
		Work: func(ctx context.Context) error {
			return err
		},
	}
}

func sleepChain(t *testing.T, count int, work time.Duration) *pipeline.Topology {
	t.Helper()

	topo, err := pipeline.SleepChain(count, work)
	if err != nil {
		t.Fatalf("unable to create chain: %v", err)
	}

	return topo
}
