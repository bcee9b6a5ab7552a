package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"melodicsim/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.data_dir (or export MELODICSIM_DATA_DIR) to the directory holding the experiment files.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and check experiment inputs exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); err != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, renderStatusLine("Scores", pathStatus(cfg.Paths.ScoresFile), cfg.Paths.ScoresFile, colorize))
			fmt.Fprintln(out, renderStatusLine("Save figures", statusInfo, yesNo(cfg.Analysis.SaveFigures), colorize))

			missing := 0
			for _, name := range cfg.ExperimentNames() {
				exp := cfg.Experiments[name]
				fmt.Fprintln(out, renderSectionHeader(name, colorize))
				for _, entry := range []struct{ label, path string }{
					{"Ranking", exp.RankingFile},
					{"Pitch tracks", exp.QueryPitchTracksFile},
					{"Results", exp.ResultsDir},
					{"Alignments", exp.AlignmentDir},
				} {
					kind := pathStatus(entry.path)
					if kind == statusWarn {
						missing++
					}
					fmt.Fprintln(out, renderStatusLine(entry.label, kind, entry.path, colorize))
				}
			}
			if missing > 0 {
				fmt.Fprintf(out, "%d experiment input(s) not found\n", missing)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func pathStatus(path string) statusKind {
	if _, err := os.Stat(path); err != nil {
		return statusWarn
	}
	return statusOK
}
