package pipeline

import (
	"github.com/pkg/errors"
)

var (
	ErrLogicMustBeSet   = errors.New("logic must be set")
	ErrFactoryMustBeSet = errors.New("logic factory must be set")
	ErrEmptyTopology    = errors.New("topology must contain at least one filter")
	ErrMultipleStarts   = errors.New("topology must have exactly one start filter")
	ErrUnknownFilter    = errors.New("unknown filter")
	ErrInstanceCount    = errors.New("instance count must be greater than 0")
	ErrAlreadyStarted   = errors.New("logic already started")
)

var (
	// ErrDispatchTimeout is reported when an instance stopped waiting for its start filter
	// before it completed. The filter chain keeps running.
	ErrDispatchTimeout = errors.New("dispatch timeout")
	// ErrDispatchCancelled is reported when the wait for the start filter was cancelled.
	ErrDispatchCancelled = errors.New("dispatch cancelled")
	// ErrStageFailure wraps the error returned by the work of a filter.
	ErrStageFailure = errors.New("stage failure")
)

// stageError decorates a work error with the filter it comes from.
// errors.Is(err, ErrStageFailure) holds for every stageError.
type stageError struct {
	filter string
	err    error
}

func newStageError(filter string, err error) *stageError {
	return &stageError{filter: filter, err: err}
}

func (e *stageError) Error() string {
	return ErrStageFailure.Error() + ": " + e.filter + ": " + e.err.Error()
}

func (e *stageError) Unwrap() error {
	return e.err
}

func (e *stageError) Is(target error) bool {
	return target == ErrStageFailure
}

// Cause makes github.com/pkg/errors.Cause return the original work error.
func (e *stageError) Cause() error {
	return e.err
}
