package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

// LogicFactory creates the instance called name.
type LogicFactory func(name string) (*Logic, error)

// Report summarises a supervisor run.
type Report struct {
	Instances     int
	Elapsed       time.Duration
	Timeouts      int
	Cancellations int
	Failures      int
}

// Supervisor creates instances, starts them concurrently and waits until all of them are terminal.
type Supervisor struct {
	factory      LogicFactory
	count        int
	pollInterval time.Duration
	mode         CompletionMode
	logger       *zap.Logger
	opts         []model.PipelineOption
	logics       []*Logic
}

// NewSupervisor creates a supervisor and initialises its pipeline options.
func NewSupervisor(factory LogicFactory, opts ...SupervisorOption) (*Supervisor, error) {
	if factory == nil {
		return nil, ErrFactoryMustBeSet
	}

	s := &Supervisor{
		factory:      factory,
		count:        DefaultInstances,
		pollInterval: DefaultPollInterval,
		mode:         CompletionPoll,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.count <= 0 {
		return nil, errors.Wrapf(ErrInstanceCount, "got %d", s.count)
	}
	if s.pollInterval <= 0 {
		s.pollInterval = DefaultPollInterval
	}

	for _, opt := range s.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return s, nil
}

// Run creates every instance, starting each one as soon as it is created, then waits until all
// of them are terminal. Dispatch timeouts and cancellations of instances do not stop the run.
func (s *Supervisor) Run(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	logics := make([]*Logic, 0, s.count)

	var grp errgroup.Group
	for i := 1; i <= s.count; i++ {
		name := fmt.Sprintf("%02d", i)
		l, err := s.factory(name)
		if err != nil {
			_ = grp.Wait()

			return nil, errors.Wrapf(err, "unable to create logic %s", name)
		}
		if l == nil {
			_ = grp.Wait()

			return nil, errors.Wrapf(ErrLogicMustBeSet, "factory returned no logic for %s", name)
		}

		logics = append(logics, l)
		grp.Go(func() error {
			return l.Execute(ctx)
		})
	}
	s.logics = logics

	s.logger.Info("supervisor started",
		zap.Int("instances", len(logics)),
		zap.Stringer("completion", s.mode),
	)

	var err error
	switch s.mode {
	case CompletionCountdown:
		err = s.countdown(ctx, logics)
	default:
		err = s.poll(ctx, logics)
	}

	waitErr := grp.Wait()
	if err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, errors.Wrap(waitErr, "unable to start logics")
	}

	return s.finishRun(logics, time.Since(startTime))
}

func (s *Supervisor) poll(ctx context.Context, logics []*Logic) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for !AllTerminal(logics) {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "supervisor stopped before every logic ended")
		case <-ticker.C:
		}
	}

	return nil
}

func (s *Supervisor) countdown(ctx context.Context, logics []*Logic) error {
	for _, l := range logics {
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "supervisor stopped before every logic ended")
		case <-l.Done():
		}
	}

	return nil
}

func (s *Supervisor) finishRun(logics []*Logic, elapsed time.Duration) (*Report, error) {
	report := &Report{
		Instances: len(logics),
		Elapsed:   elapsed,
	}
	for _, l := range logics {
		if l.Failed() {
			report.Failures++
		}
		err := l.DispatchErr()
		switch {
		case errors.Is(err, ErrDispatchTimeout):
			report.Timeouts++
		case errors.Is(err, ErrDispatchCancelled):
			report.Cancellations++
		}
	}

	for _, opt := range s.opts {
		err := opt.Finish(elapsed)
		if err != nil {
			return nil, errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	s.logger.Info("supervisor end",
		zap.Duration("elapsed", elapsed),
		zap.Int("instances", report.Instances),
		zap.Int("timeouts", report.Timeouts),
		zap.Int("cancellations", report.Cancellations),
		zap.Int("failures", report.Failures),
	)

	return report, nil
}

// Logics returns the instances created by the last run, in creation order.
func (s *Supervisor) Logics() []*Logic {
	return s.logics
}

// AllTerminal reports whether every instance is terminal.
func AllTerminal(logics []*Logic) bool {
	for _, l := range logics {
		if !l.Terminal() {
			return false
		}
	}

	return true
}
