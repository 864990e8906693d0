package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

// WorkFunc is the bounded unit of work performed by a filter.
type WorkFunc func(ctx context.Context) error

// Sleep returns a WorkFunc waiting for d. It stands in for real work.
func Sleep(d time.Duration) WorkFunc {
	return func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "work interrupted")
		case <-timer.C:
			return nil
		}
	}
}

// Filter is a named unit of work belonging to one pipeline instance.
type Filter interface {
	// Name returns the name of the filter, unique inside its instance.
	Name() string
	// Info returns the identity of the filter.
	Info() *model.FilterInfo
	// Execute performs the work of the filter, then notifies every observer in registration order.
	Execute(ctx context.Context)
	// AddObserver registers an observer notified when the filter completes.
	AddObserver(o Observer)
}

// endpoint is the view a filter and its links have of their owning instance.
type endpoint interface {
	NotifyEnd()
	dispatch(task string, fn func())
	onFilterEnd(filter *model.FilterInfo, elapsed time.Duration, err error)
	onLinkFired(link *model.LinkInfo, latency time.Duration)
	// fail records a stage failure and reports whether observers must still be notified.
	fail(filter *model.FilterInfo, err error) bool
}

// WorkFilter is a Filter running a WorkFunc.
type WorkFilter struct {
	info      *model.FilterInfo
	work      WorkFunc
	owner     endpoint
	observers []Observer
}

func newWorkFilter(owner endpoint, info *model.FilterInfo, work WorkFunc) *WorkFilter {
	return &WorkFilter{
		info:  info,
		work:  work,
		owner: owner,
	}
}

func (f *WorkFilter) Name() string {
	return f.info.Name
}

func (f *WorkFilter) Info() *model.FilterInfo {
	return f.info
}

// AddObserver must only be called while the instance is being wired.
func (f *WorkFilter) AddObserver(o Observer) {
	f.observers = append(f.observers, o)
}

// Observers returns the registered observers in registration order.
func (f *WorkFilter) Observers() []Observer {
	return f.observers
}

// Execute runs the work and notifies the observers once it returned.
//
// When the work fails, the owning instance decides whether the observers are still notified.
func (f *WorkFilter) Execute(ctx context.Context) {
	start := time.Now()
	err := f.runWork(ctx)
	f.owner.onFilterEnd(f.info, time.Since(start), err)

	if err != nil && !f.owner.fail(f.info, err) {
		return
	}

	for _, o := range f.observers {
		o.Notify(ctx)
	}
}

func (f *WorkFilter) runWork(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newStageError(f.info.Name, errors.Errorf("panic: %v", r))
		}
	}()

	if werr := f.work(ctx); werr != nil {
		return newStageError(f.info.Name, werr)
	}

	return nil
}

var _ Filter = (*WorkFilter)(nil)
