package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"melodicsim/internal/config"
)

func TestLoadDefaultConfigUsesEnvDataDirAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	dataDir := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("MELODICSIM_DATA_DIR", dataDir)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.DataDir != dataDir {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, dataDir)
	}
	if want := filepath.Join(dataDir, "scores.json"); cfg.Paths.ScoresFile != want {
		t.Fatalf("unexpected scores file: got %q want %q", cfg.Paths.ScoresFile, want)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "melodicsim", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Analysis.RankThreshold != 10 {
		t.Fatalf("unexpected rank threshold: %d", cfg.Analysis.RankThreshold)
	}
	if cfg.Analysis.DivergentThreshold != 10 {
		t.Fatalf("unexpected divergent threshold: %d", cfg.Analysis.DivergentThreshold)
	}
	if cfg.Analysis.SaveFigures {
		t.Fatal("expected figure saving disabled by default")
	}
	if cfg.Analysis.ResultSuffix != ".csv" {
		t.Fatalf("unexpected result suffix: %q", cfg.Analysis.ResultSuffix)
	}
	if cfg.Render.Format != "png" {
		t.Fatalf("unexpected render format: %q", cfg.Render.Format)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if len(cfg.Experiments) != 0 {
		t.Fatalf("expected no experiments by default, got %v", cfg.ExperimentNames())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("expected log dir %q to exist: %v", cfg.Paths.LogDir, err)
	}
}

func TestLoadCustomPathResolvesExperimentsUnderDataDir(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "melodicsim.toml")

	type experiment struct {
		RankingFile          string `toml:"ranking_file"`
		QueryPitchTracksFile string `toml:"query_pitch_tracks_file"`
		ResultsDir           string `toml:"results_dir"`
		AlignmentDir         string `toml:"alignment_dir"`
	}
	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Analysis struct {
			RankThreshold int  `toml:"rank_threshold"`
			SaveFigures   bool `toml:"save_figures"`
		} `toml:"analysis"`
		Experiments map[string]experiment `toml:"experiments"`
	}
	custom := payload{}
	custom.Paths.DataDir = tempDir
	custom.Analysis.RankThreshold = 3
	custom.Analysis.SaveFigures = true
	custom.Experiments = map[string]experiment{
		"pyin": {
			RankingFile:          "list_rank_pyin.json",
			QueryPitchTracksFile: "query_pitchtracks_pyin.json",
			ResultsDir:           "results/pyin",
			AlignmentDir:         "/abs/resultsPath/pyin",
		},
	}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: exists=%v path=%q", exists, resolved)
	}
	if cfg.Analysis.RankThreshold != 3 || !cfg.Analysis.SaveFigures {
		t.Fatalf("unexpected analysis section: %+v", cfg.Analysis)
	}
	if cfg.DefaultExperiment != "pyin" {
		t.Fatalf("expected single experiment to become the default, got %q", cfg.DefaultExperiment)
	}

	name, exp, err := cfg.Experiment("")
	if err != nil {
		t.Fatalf("Experiment returned error: %v", err)
	}
	if name != "pyin" {
		t.Fatalf("unexpected experiment name %q", name)
	}
	if want := filepath.Join(tempDir, "list_rank_pyin.json"); exp.RankingFile != want {
		t.Fatalf("unexpected ranking file: got %q want %q", exp.RankingFile, want)
	}
	if want := filepath.Join(tempDir, "results", "pyin"); exp.ResultsDir != want {
		t.Fatalf("unexpected results dir: got %q want %q", exp.ResultsDir, want)
	}
	if exp.AlignmentDir != "/abs/resultsPath/pyin" {
		t.Fatalf("expected absolute alignment dir to be kept, got %q", exp.AlignmentDir)
	}
}

func TestExperimentUnknownName(t *testing.T) {
	cfg := config.Default()
	cfg.Experiments["a"] = config.Experiment{}
	if _, _, err := cfg.Experiment("missing"); err == nil || !strings.Contains(err.Error(), "known: a") {
		t.Fatalf("expected unknown experiment error listing known names, got %v", err)
	}
	cfg.DefaultExperiment = ""
	if _, _, err := cfg.Experiment(""); err == nil {
		t.Fatal("expected error when no experiment is selected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "negative rank threshold",
			mutate: func(c *config.Config) { c.Analysis.RankThreshold = -1 },
			want:   "analysis.rank_threshold",
		},
		{
			name:   "zero workers",
			mutate: func(c *config.Config) { c.Analysis.Workers = 0 },
			want:   "analysis.workers",
		},
		{
			name:   "unsupported format",
			mutate: func(c *config.Config) { c.Render.Format = "gif" },
			want:   "render.format",
		},
		{
			name: "incomplete experiment",
			mutate: func(c *config.Config) {
				c.Experiments["x"] = config.Experiment{RankingFile: "r.json"}
			},
			want: "experiments.x.query_pitch_tracks_file",
		},
		{
			name:   "dangling baseline",
			mutate: func(c *config.Config) { c.BaselineExperiment = "nope" },
			want:   "baseline_experiment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSampleConfigLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	t.Setenv("MELODICSIM_DATA_DIR", dir)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if got := len(cfg.Experiments); got != 5 {
		t.Fatalf("expected 5 sample experiments, got %d", got)
	}
	if cfg.BaselineExperiment != "900_0.7" || cfg.ComparisonExperiment != "1000_0.85" {
		t.Fatalf("unexpected comparison pair: %q vs %q", cfg.BaselineExperiment, cfg.ComparisonExperiment)
	}
	_, exp, err := cfg.Experiment("")
	if err != nil {
		t.Fatalf("default experiment: %v", err)
	}
	if want := filepath.Join(dir, "results", "900_0.7_pyin_roleTypeWeight"); exp.ResultsDir != want {
		t.Fatalf("unexpected results dir: got %q want %q", exp.ResultsDir, want)
	}
}
