package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"melodicsim/internal/dataset"
	"melodicsim/internal/errorcase"
	"melodicsim/internal/logging"
)

type divergentReport struct {
	Baseline   string                    `json:"baseline"`
	Comparison string                    `json:"comparison"`
	Threshold  int                       `json:"threshold"`
	Cases      []errorcase.DivergentCase `json:"cases"`
}

func newDivergentCommand(ctx *commandContext) *cobra.Command {
	var baseline string
	var comparison string
	var threshold int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "divergent",
		Short: "List queries the baseline experiment retrieves but the comparison misses",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if baseline == "" {
				baseline = cfg.BaselineExperiment
			}
			if comparison == "" {
				comparison = cfg.ComparisonExperiment
			}
			if baseline == "" || comparison == "" {
				return errors.New("both --baseline and --comparison are required (or set baseline_experiment and comparison_experiment)")
			}
			t := cfg.Analysis.DivergentThreshold
			if cmd.Flags().Changed("threshold") {
				t = threshold
			}
			if t < 0 {
				return errors.New("--threshold must be >= 0")
			}

			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			runLogger := logging.WithContext(ctx.runContext(cmd, baseline), logger)

			rankings := make([]*dataset.Ranking, 0, 2)
			for _, ref := range []string{baseline, comparison} {
				name, expCfg, err := cfg.Experiment(ref)
				if err != nil {
					return err
				}
				ranking, err := dataset.LoadRankingOnly(name, expCfg)
				if err != nil {
					return err
				}
				rankings = append(rankings, ranking)
			}

			cases, err := errorcase.SelectDivergentCases(rankings[0], rankings[1], t)
			if err != nil {
				return fmt.Errorf("compare %s with %s: %w", baseline, comparison, err)
			}
			runLogger.Info("divergent cases selected",
				logging.String("comparison", comparison),
				logging.Int("threshold", t),
				logging.Int("count", len(cases)),
			)

			report := divergentReport{Baseline: baseline, Comparison: comparison, Threshold: t, Cases: cases}
			if report.Cases == nil {
				report.Cases = []errorcase.DivergentCase{}
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("rank <= %d in %s, > %d in %s", t, baseline, t, comparison), colorize))
			if len(cases) == 0 {
				fmt.Fprintln(out, "No divergent queries")
				return nil
			}
			rows := make([][]string, 0, len(cases))
			for _, c := range cases {
				rows = append(rows, []string{c.Query, strconv.Itoa(c.Baseline.Rank), strconv.Itoa(c.Comparison.Rank)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Query", baseline, comparison},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
				colorize,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseline, "baseline", "", "Baseline experiment (defaults to baseline_experiment)")
	cmd.Flags().StringVar(&comparison, "comparison", "", "Comparison experiment (defaults to comparison_experiment)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Rank separating a hit from a miss")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
