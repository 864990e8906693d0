package pipeline

import (
	"sync"

	"go.uber.org/zap"
)

// dispatcher runs fire-and-forget tasks in their own goroutine.
// A panicking task is logged instead of crashing the process.
type dispatcher struct {
	logger *zap.Logger
	tasks  sync.WaitGroup
}

func (d *dispatcher) dispatch(task string, fn func()) {
	d.tasks.Add(1)
	go func() {
		defer d.tasks.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("dispatch panic",
					zap.String("task", task),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
			}
		}()
		fn()
	}()
}

// wait blocks until every dispatched task returned.
func (d *dispatcher) wait() {
	d.tasks.Wait()
}
