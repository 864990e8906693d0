package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askiada/go-filterchain/internal/config"
	"github.com/askiada/go-filterchain/internal/topofile"
)

func lintCmd() *cobra.Command {
	work := config.Default().Run.Work

	cmd := &cobra.Command{
		Use:   "lint <topology.dot>",
		Short: "Validate a topology DOT file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topofile.ParseFile(args[0], work)
			if err != nil {
				return err
			}

			filters, links, err := topo.Size()
			if err != nil {
				return err
			}

			path, total, err := topo.CriticalPath()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d filters, %d links, critical path %s (%s)\n",
				filters, links, strings.Join(path, " -> "), total)

			return nil
		},
	}

	cmd.Flags().DurationVar(&work, "work", work, "work duration of filters without work attribute")

	return cmd
}
