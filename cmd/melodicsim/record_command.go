package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"melodicsim/internal/errorcase"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var experiment string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "record QUERY",
		Short: "Show why a single query missed its ground truth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			_, expCfg, err := cfg.Experiment(experiment)
			if err != nil {
				return err
			}

			source := errorcase.RecordSource{Dir: expCfg.ResultsDir, Suffix: cfg.Analysis.ResultSuffix}
			rec, err := source.Build(args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, rec)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader(rec.QueryPhraseName, colorize))
			fmt.Fprintln(out, renderStatusLine("Ground truth", statusInfo, rec.GroundTruthPhraseName, colorize))
			fmt.Fprintln(out, renderStatusLine("Rank", statusWarn, strconv.Itoa(rec.GroundTruthRank), colorize))
			fmt.Fprintln(out, renderStatusLine("DTW score", statusInfo, rec.GroundTruthDTWScore, colorize))
			fmt.Fprintln(out, renderStatusLine("Best match", statusInfo, rec.BestMatchPhraseName, colorize))
			fmt.Fprintln(out, renderStatusLine("Table", statusInfo, source.Path(rec.QueryPhraseName), colorize))
			return nil
		},
	}

	cmd.Flags().StringVarP(&experiment, "experiment", "e", "", "Experiment holding the result tables")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
