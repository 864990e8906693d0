package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

// FailurePolicy decides what happens to an instance when the work of a filter fails.
type FailurePolicy int

const (
	// FailTerminate marks the instance failed and terminal without notifying downstream filters.
	FailTerminate FailurePolicy = iota
	// FailPropagate marks the instance failed and keeps running the chain to its end.
	FailPropagate
)

func (p FailurePolicy) String() string {
	switch p {
	case FailTerminate:
		return "terminate"
	case FailPropagate:
		return "propagate"
	default:
		return "unknown"
	}
}

// DefaultDispatchTimeout bounds how long Logic.Execute waits for the start filter.
const DefaultDispatchTimeout = time.Second

type logicConfig struct {
	timeout time.Duration
	policy  FailurePolicy
	logger  *zap.Logger
	opts    []model.PipelineOption
}

type LogicOption func(c *logicConfig)

// LogicDispatchTimeout sets how long Execute waits for the start filter. A zero or negative
// timeout waits until the start filter completed or the context is done.
func LogicDispatchTimeout(timeout time.Duration) LogicOption {
	return func(c *logicConfig) {
		c.timeout = timeout
	}
}

func LogicFailurePolicy(policy FailurePolicy) LogicOption {
	return func(c *logicConfig) {
		c.policy = policy
	}
}

func LogicLogger(logger *zap.Logger) LogicOption {
	return func(c *logicConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// LogicPipelineOptions registers options notified while the instance runs.
func LogicPipelineOptions(opts ...model.PipelineOption) LogicOption {
	return func(c *logicConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// CompletionMode decides how the supervisor detects that every instance is terminal.
type CompletionMode int

const (
	// CompletionPoll checks every terminal flag, sleeping the poll interval between checks.
	CompletionPoll CompletionMode = iota
	// CompletionCountdown waits on the done channel of every instance in turn.
	CompletionCountdown
)

func (m CompletionMode) String() string {
	switch m {
	case CompletionPoll:
		return "poll"
	case CompletionCountdown:
		return "countdown"
	default:
		return "unknown"
	}
}

const (
	DefaultInstances    = 100
	DefaultPollInterval = time.Millisecond
)

type SupervisorOption func(s *Supervisor)

func SupervisorInstances(count int) SupervisorOption {
	return func(s *Supervisor) {
		s.count = count
	}
}

func SupervisorPollInterval(interval time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.pollInterval = interval
	}
}

func SupervisorCompletion(mode CompletionMode) SupervisorOption {
	return func(s *Supervisor) {
		s.mode = mode
	}
}

func SupervisorLogger(logger *zap.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// SupervisorPipelineOptions registers options initialised before the run and finished after it.
// The logic factory is responsible for passing the same options to the instances it creates.
func SupervisorPipelineOptions(opts ...model.PipelineOption) SupervisorOption {
	return func(s *Supervisor) {
		s.opts = append(s.opts, opts...)
	}
}
