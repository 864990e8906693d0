package main

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/askiada/go-filterchain/internal/config"
	"github.com/askiada/go-filterchain/internal/logging"
	"github.com/askiada/go-filterchain/internal/topofile"
	"github.com/askiada/go-filterchain/pkg/pipeline"
	"github.com/askiada/go-filterchain/pkg/pipeline/drawer"
	"github.com/askiada/go-filterchain/pkg/pipeline/measure"
	"github.com/askiada/go-filterchain/pkg/pipeline/model"
)

func runCmd() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline instances and report the elapsed time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err != nil {
				return err
			}
			if vErr := cfg.Validate(); vErr != nil {
				return vErr
			}

			logger, lErr := logging.New(logging.Config{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
			})
			if lErr != nil {
				return lErr
			}
			defer func() { _ = logger.Sync() }()

			return execute(signalContext(cmd.Context()), cfg, logger, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.Run.Instances, "instances", cfg.Run.Instances, "number of pipeline instances")
	flags.IntVar(&cfg.Run.Filters, "filters", cfg.Run.Filters, "number of filters in the default chain")
	flags.DurationVar(&cfg.Run.Work, "work", cfg.Run.Work, "work duration of every filter")
	flags.DurationVar(&cfg.Run.Timeout, "timeout", cfg.Run.Timeout, "how long an instance waits for its start filter")
	flags.DurationVar(&cfg.Run.Poll, "poll", cfg.Run.Poll, "interval between two completion checks")
	flags.BoolVar(&cfg.Run.Countdown, "countdown", cfg.Run.Countdown, "wait on done channels instead of polling")
	flags.BoolVar(&cfg.Run.PropagateFailures, "propagate-failures", cfg.Run.PropagateFailures, "keep running a chain after a filter failed")
	flags.StringVar(&cfg.Run.Topology, "topology", cfg.Run.Topology, "DOT file describing the topology of an instance")
	flags.StringVar(&cfg.Output.DOTFile, "dot", cfg.Output.DOTFile, "write the measured topology to this DOT file")
	flags.StringVar(&cfg.Output.MetricsFile, "metrics-file", cfg.Output.MetricsFile, "write Prometheus metrics to this file")
	flags.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "log level")
	flags.BoolVar(&cfg.Logging.Development, "log-dev", cfg.Logging.Development, "human readable logs")

	return cmd
}

func execute(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	topo, err := loadTopology(cfg)
	if err != nil {
		return err
	}

	var opts []model.PipelineOption

	msr := measure.NewDefaultMeasure()
	opts = append(opts, measure.PipelineMeasure(msr))
	if cfg.Output.DOTFile != "" {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(cfg.Output.DOTFile), msr))
	}

	reg := prometheus.NewRegistry()
	if cfg.Output.MetricsFile != "" {
		opts = append(opts, measure.NewPrometheusMeasure(reg))
	}

	policy := pipeline.FailTerminate
	if cfg.Run.PropagateFailures {
		policy = pipeline.FailPropagate
	}

	factory := func(name string) (*pipeline.Logic, error) {
		return pipeline.NewLogic(name, topo,
			pipeline.LogicDispatchTimeout(cfg.Run.Timeout),
			pipeline.LogicFailurePolicy(policy),
			pipeline.LogicLogger(logger),
			pipeline.LogicPipelineOptions(opts...),
		)
	}

	mode := pipeline.CompletionPoll
	if cfg.Run.Countdown {
		mode = pipeline.CompletionCountdown
	}

	sup, err := pipeline.NewSupervisor(factory,
		pipeline.SupervisorInstances(cfg.Run.Instances),
		pipeline.SupervisorPollInterval(cfg.Run.Poll),
		pipeline.SupervisorCompletion(mode),
		pipeline.SupervisorLogger(logger),
		pipeline.SupervisorPipelineOptions(opts...),
	)
	if err != nil {
		return err
	}

	report, err := sup.Run(ctx)
	if err != nil {
		return err
	}

	if cfg.Output.MetricsFile != "" {
		err = prometheus.WriteToTextfile(cfg.Output.MetricsFile, reg)
		if err != nil {
			return errors.Wrapf(err, "unable to write metrics to %s", cfg.Output.MetricsFile)
		}
	}

	fmt.Fprintf(out, "Main end. [%s] instances=%d timeouts=%d cancellations=%d failures=%d\n",
		report.Elapsed, report.Instances, report.Timeouts, report.Cancellations, report.Failures)

	return nil
}

func loadTopology(cfg *config.Config) (*pipeline.Topology, error) {
	if cfg.Run.Topology != "" {
		return topofile.ParseFile(cfg.Run.Topology, cfg.Run.Work)
	}

	return pipeline.SleepChain(cfg.Run.Filters, cfg.Run.Work)
}
