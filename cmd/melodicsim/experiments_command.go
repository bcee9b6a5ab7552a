package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExperimentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "experiments",
		Short: "List configured experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			names := cfg.ExperimentNames()
			if len(names) == 0 {
				fmt.Fprintln(out, "No experiments configured")
				return nil
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				exp := cfg.Experiments[name]
				var roles []string
				if name == cfg.DefaultExperiment {
					roles = append(roles, "default")
				}
				if name == cfg.BaselineExperiment {
					roles = append(roles, "baseline")
				}
				if name == cfg.ComparisonExperiment {
					roles = append(roles, "comparison")
				}
				rows = append(rows, []string{name, strings.Join(roles, ", "), exp.RankingFile, exp.ResultsDir})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Role", "Ranking", "Results"},
				rows,
				nil,
				shouldColorize(out),
			))
			return nil
		},
	}
}
