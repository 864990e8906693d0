package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

// State is the lifecycle state of a pipeline instance.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Logic is a pipeline instance: a fixed topology of filters started from a single filter.
type Logic struct {
	info    *model.LogicInfo
	cfg     logicConfig
	start   Filter
	filters []Filter
	links   []*Link

	dispatcher

	state   atomic.Int32
	ending  atomic.Bool
	failed  atomic.Bool
	started atomic.Int64
	done    chan struct{}

	mu          sync.Mutex
	dispatchErr error
}

// NewLogic wires an instance from topo. Every filter gets one link per successor,
// filters without successor get a terminal link.
func NewLogic(name string, topo *Topology, opts ...LogicOption) (*Logic, error) {
	if topo == nil {
		return nil, ErrEmptyTopology
	}

	startName, err := topo.Start()
	if err != nil {
		return nil, errors.Wrapf(err, "logic %s", name)
	}

	l := &Logic{
		info: &model.LogicInfo{
			Name:  name,
			RunID: uuid.NewString(),
		},
		cfg: logicConfig{
			timeout: DefaultDispatchTimeout,
			policy:  FailTerminate,
			logger:  zap.NewNop(),
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(&l.cfg)
	}
	l.cfg.logger = l.cfg.logger.With(zap.String("logic", name))
	l.dispatcher.logger = l.cfg.logger

	err = l.wire(topo, startName)
	if err != nil {
		return nil, errors.Wrapf(err, "logic %s", name)
	}

	filterInfos := make([]*model.FilterInfo, len(l.filters))
	for i, f := range l.filters {
		filterInfos[i] = f.Info()
	}
	linkInfos := make([]*model.LinkInfo, len(l.links))
	for i, link := range l.links {
		linkInfos[i] = link.Info()
	}

	for _, opt := range l.cfg.opts {
		err := opt.PrepareLogic(l.info, filterInfos, linkInfos)
		if err != nil {
			return nil, errors.Wrap(err, "unable to prepare logic")
		}
	}

	return l, nil
}

// NewChainLogic wires an instance from a linear chain of filters.
func NewChainLogic(name string, specs []FilterSpec, opts ...LogicOption) (*Logic, error) {
	topo, err := Chain(specs...)
	if err != nil {
		return nil, errors.Wrapf(err, "logic %s", name)
	}

	return NewLogic(name, topo, opts...)
}

// wire creates the filters and the links. The start filter always comes first.
func (l *Logic) wire(topo *Topology, startName string) error {
	specs, err := topo.Filters()
	if err != nil {
		return err
	}

	byName := make(map[string]*WorkFilter, len(specs))
	for _, spec := range specs {
		f := newWorkFilter(l, &model.FilterInfo{
			Logic: l.info,
			Name:  spec.Name,
			Work:  spec.Duration,
		}, spec.Work)
		byName[spec.Name] = f

		if spec.Name == startName {
			l.start = f
			l.filters = append([]Filter{f}, l.filters...)
		} else {
			l.filters = append(l.filters, f)
		}
	}

	for _, f := range l.filters {
		succ, err := topo.Successors(f.Name())
		if err != nil {
			return err
		}

		if len(succ) == 0 {
			l.addLink(f, nil)

			continue
		}

		for _, name := range succ {
			l.addLink(f, byName[name])
		}
	}

	return nil
}

func (l *Logic) addLink(in Filter, out Filter) {
	link := newLink(l, in, out)
	in.AddObserver(link)
	l.links = append(l.links, link)
}

// Execute starts the instance: it dispatches the start filter and waits for it up to the
// dispatch timeout. A timeout or a cancelled ctx is reported and Execute returns normally,
// the chain keeps running either way.
//
// Execute only returns an error when the instance was already started.
func (l *Logic) Execute(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateCreated), int32(StateRunning)) {
		return errors.Wrapf(ErrAlreadyStarted, "logic %s", l.info.Name)
	}

	now := time.Now()
	l.started.Store(now.UnixNano())
	l.cfg.logger.Debug("logic start", zap.String("run_id", l.info.RunID))

	// The chain outlives the wait: it keeps ctx values but not its cancellation.
	chainCtx := context.WithoutCancel(ctx)
	startLink := &model.LinkInfo{Source: model.StartFilter, Target: l.start.Info()}
	finished := make(chan struct{})

	l.dispatch(l.start.Name(), func() {
		defer close(finished)
		l.onLinkFired(startLink, time.Since(now))
		l.start.Execute(chainCtx)
	})

	var timeout <-chan time.Time
	if l.cfg.timeout > 0 {
		timer := time.NewTimer(l.cfg.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-finished:
	case <-timeout:
		l.reportDispatchError(errors.Wrapf(ErrDispatchTimeout, "logic %s: no completion after %s", l.info.Name, l.cfg.timeout))
	case <-ctx.Done():
		l.reportDispatchError(errors.Wrapf(ErrDispatchCancelled, "logic %s: %v", l.info.Name, ctx.Err()))
	}

	return nil
}

func (l *Logic) reportDispatchError(err error) {
	l.mu.Lock()
	l.dispatchErr = err
	l.mu.Unlock()

	msg := "dispatch timeout"
	if errors.Is(err, ErrDispatchCancelled) {
		msg = "dispatch cancelled"
	}
	l.cfg.logger.Warn(msg, zap.Error(err))

	l.emit(func(opt model.PipelineOption) error {
		return opt.OnDispatchError(l.info, err)
	})
}

// NotifyEnd makes the instance terminal. Only the first call has an effect.
// The OnLogicEnd hooks have returned by the time Terminal reports true.
func (l *Logic) NotifyEnd() {
	if !l.ending.CompareAndSwap(false, true) {
		return
	}

	var elapsed time.Duration
	if started := l.started.Load(); started > 0 {
		elapsed = time.Since(time.Unix(0, started))
	}
	failed := l.failed.Load()

	l.cfg.logger.Info("logic end", zap.Duration("elapsed", elapsed), zap.Bool("failed", failed))

	l.emit(func(opt model.PipelineOption) error {
		return opt.OnLogicEnd(l.info, elapsed, failed)
	})

	l.state.Store(int32(StateTerminal))
	close(l.done)
}

func (l *Logic) onFilterEnd(filter *model.FilterInfo, elapsed time.Duration, err error) {
	if err != nil {
		l.cfg.logger.Warn("stage failure",
			zap.String("filter", filter.Name),
			zap.Duration("duration", elapsed),
			zap.Stringer("policy", l.cfg.policy),
			zap.Error(err),
		)
	} else {
		l.cfg.logger.Info("filter end", zap.String("filter", filter.Name), zap.Duration("duration", elapsed))
	}

	l.emit(func(opt model.PipelineOption) error {
		return opt.OnFilterEnd(filter, elapsed, err)
	})
}

func (l *Logic) onLinkFired(link *model.LinkInfo, latency time.Duration) {
	l.emit(func(opt model.PipelineOption) error {
		return opt.OnLinkFired(link, latency)
	})
}

func (l *Logic) fail(_ *model.FilterInfo, _ error) bool {
	l.failed.Store(true)
	if l.cfg.policy == FailPropagate {
		return true
	}

	l.NotifyEnd()

	return false
}

// emit calls fn for every pipeline option. Option errors cannot stop a running chain, they are logged.
func (l *Logic) emit(fn func(opt model.PipelineOption) error) {
	for _, opt := range l.cfg.opts {
		if err := fn(opt); err != nil {
			l.cfg.logger.Error("pipeline option error", zap.Error(err))
		}
	}
}

func (l *Logic) Name() string {
	return l.info.Name
}

func (l *Logic) Info() *model.LogicInfo {
	return l.info
}

func (l *Logic) State() State {
	return State(l.state.Load())
}

// Terminal reports whether the instance reached its terminal state.
func (l *Logic) Terminal() bool {
	return l.State() == StateTerminal
}

// Failed reports whether a filter of the instance failed.
func (l *Logic) Failed() bool {
	return l.failed.Load()
}

// Done is closed when the instance becomes terminal.
func (l *Logic) Done() <-chan struct{} {
	return l.done
}

// DispatchErr returns the timeout or cancellation reported by Execute, if any.
func (l *Logic) DispatchErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.dispatchErr
}

// Start returns the start filter.
func (l *Logic) Start() Filter {
	return l.start
}

// Filters returns every filter of the instance, the start filter first.
func (l *Logic) Filters() []Filter {
	return l.filters
}

// Wait blocks until every task dispatched for the instance returned.
// It must be called after Execute.
func (l *Logic) Wait() {
	l.wait()
}

var _ endpoint = (*Logic)(nil)
