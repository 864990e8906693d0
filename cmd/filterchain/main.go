package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "filterchain",
		Short: "Run many filter chains concurrently",
		Long: `filterchain starts many independent instances of a filter chain and waits
until every one of them reached its last filter.

Each filter notifies the next one when its work is done. Defaults are read from
FILTERCHAIN_* environment variables and can be overridden with flags.`,
		SilenceUsage: true,
	}
	root.AddCommand(runCmd())
	root.AddCommand(lintCmd())

	return root
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) context.Context {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ctx
}
