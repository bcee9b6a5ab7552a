package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"melodicsim/internal/config"
	"melodicsim/internal/dataset"
	"melodicsim/internal/errorcase"
	"melodicsim/internal/logging"
	"melodicsim/internal/render"
	"melodicsim/internal/runlock"
)

type analyzeReport struct {
	RunID      string                        `json:"run_id"`
	Experiment string                        `json:"experiment"`
	Threshold  int                           `json:"threshold"`
	Queries    int                           `json:"queries"`
	FigureDir  string                        `json:"figure_dir,omitempty"`
	Records    []errorcase.ErrorPhraseRecord `json:"records"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var experiment string
	var threshold int
	var save bool
	var figureDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Render the diagnostic figures of every query ranked above the threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			name, expCfg, err := cfg.Experiment(experiment)
			if err != nil {
				return err
			}

			n := cfg.Analysis.RankThreshold
			if cmd.Flags().Changed("threshold") {
				n = threshold
			}
			if n < 0 {
				return errors.New("--threshold must be >= 0")
			}
			saveFigures := cfg.Analysis.SaveFigures
			if cmd.Flags().Changed("save") {
				saveFigures = save
			}
			outDir := cfg.Paths.FigureDir
			if strings.TrimSpace(figureDir) != "" {
				if outDir, err = config.ExpandPath(figureDir); err != nil {
					return fmt.Errorf("resolve figure directory: %w", err)
				}
			}

			logger, err := ctx.ensureLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			runCtx := ctx.runContext(cmd, name)
			runLogger := logging.WithContext(runCtx, logger)

			exp, err := dataset.LoadExperiment(name, expCfg, cfg.Analysis.ResultSuffix)
			if err != nil {
				return err
			}
			scores, err := dataset.LoadScores(cfg.Paths.ScoresFile)
			if err != nil {
				return err
			}

			if saveFigures {
				lock, err := runlock.Acquire(outDir)
				if err != nil {
					return err
				}
				defer func() {
					if err := lock.Release(); err != nil {
						runLogger.Warn("failed to release figure lock", logging.Error(err))
					}
				}()
			}

			runLogger.Info("analysis started",
				logging.Int("threshold", n),
				logging.Bool("save", saveFigures),
				logging.String(logging.FieldPath, outDir),
			)
			collector := errorcase.NewCollector(render.New(render.OptionsFromConfig(cfg.Render), logger), logger)
			records, err := collector.CollectAndDispatch(runCtx, errorcase.Inputs{
				Ranking:         exp.Ranking,
				PitchTracks:     exp.PitchTracks,
				Scores:          scores,
				PitchTracksFile: expCfg.QueryPitchTracksFile,
				ScoresFile:      cfg.Paths.ScoresFile,
				ResultsDir:      exp.ResultsDir,
				AlignmentDir:    exp.AlignmentDir,
				ResultSuffix:    exp.ResultSuffix,
			}, errorcase.Options{
				RankThreshold: n,
				Workers:       cfg.Analysis.Workers,
				Save:          saveFigures,
				OutputDir:     outDir,
			})
			if err != nil {
				return err
			}
			runLogger.Info("analysis finished", logging.Int("error_cases", len(records)))

			report := analyzeReport{
				RunID:      ctx.runID,
				Experiment: name,
				Threshold:  n,
				Queries:    exp.Ranking.Len(),
				Records:    records,
			}
			if saveFigures {
				report.FigureDir = outDir
			}
			if report.Records == nil {
				report.Records = []errorcase.ErrorPhraseRecord{}
			}
			if jsonOut {
				return writeJSON(cmd, report)
			}
			printAnalyzeReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().StringVarP(&experiment, "experiment", "e", "", "Experiment to analyse (defaults to default_experiment)")
	cmd.Flags().IntVarP(&threshold, "threshold", "n", 0, "Rank threshold N; queries ranked above N are error cases")
	cmd.Flags().BoolVar(&save, "save", false, "Write figures to the figure directory (overrides analysis.save_figures)")
	cmd.Flags().StringVar(&figureDir, "figure-dir", "", "Override paths.figure_dir")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printAnalyzeReport(cmd *cobra.Command, report analyzeReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	fmt.Fprintln(out, renderSectionHeader(fmt.Sprintf("%s: rank > %d", report.Experiment, report.Threshold), colorize))
	if len(report.Records) > 0 {
		rows := make([][]string, 0, len(report.Records))
		for _, rec := range report.Records {
			rows = append(rows, []string{
				rec.QueryPhraseName,
				strconv.Itoa(rec.GroundTruthRank),
				rec.GroundTruthPhraseName,
				rec.GroundTruthDTWScore,
				rec.BestMatchPhraseName,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Query", "Rank", "Ground truth", "DTW score", "Best match"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			colorize,
		))
	}

	casesKind := statusOK
	if len(report.Records) > 0 {
		casesKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Queries", statusInfo, strconv.Itoa(report.Queries), colorize))
	fmt.Fprintln(out, renderStatusLine("Error cases", casesKind, strconv.Itoa(len(report.Records)), colorize))
	figures := "not saved"
	if report.FigureDir != "" {
		figures = "saved to " + report.FigureDir
	}
	fmt.Fprintln(out, renderStatusLine("Figures", statusInfo, figures, colorize))
}
