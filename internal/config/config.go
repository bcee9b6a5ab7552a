package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains shared input and output locations.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	ScoresFile string `toml:"scores_file"`
	FigureDir  string `toml:"figure_dir"`
	LogDir     string `toml:"log_dir"`
}

// Analysis contains the error-case selection knobs.
type Analysis struct {
	// RankThreshold is N: queries whose ground-truth rank exceeds it are error cases.
	RankThreshold int `toml:"rank_threshold"`
	// DivergentThreshold splits "found" from "missed" when comparing two experiments.
	DivergentThreshold int    `toml:"divergent_threshold"`
	SaveFigures        bool   `toml:"save_figures"`
	Workers            int    `toml:"workers"`
	ResultSuffix       string `toml:"result_suffix"`
}

// Render contains figure output settings.
type Render struct {
	WidthCM              float64 `toml:"width_cm"`
	HeightCM             float64 `toml:"height_cm"`
	Format               string  `toml:"format"`
	AlignmentStride      int     `toml:"alignment_stride"`
	AlignmentOffsetCents float64 `toml:"alignment_offset_cents"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Experiment describes one precomputed pitch-track/ranking configuration.
type Experiment struct {
	RankingFile          string `toml:"ranking_file"`
	QueryPitchTracksFile string `toml:"query_pitch_tracks_file"`
	ResultsDir           string `toml:"results_dir"`
	AlignmentDir         string `toml:"alignment_dir"`
}

// Config encapsulates all configuration values for melodicsim.
//
// Configuration sections:
//   - Paths: data root, score records, figure and log directories
//   - Analysis: rank thresholds, figure saving, worker count
//   - Render: figure size, format and alignment drawing
//   - Logging: log format and level
//   - Experiments: named ranking/pitch-track/result configurations
type Config struct {
	Paths                Paths                 `toml:"paths"`
	Analysis             Analysis              `toml:"analysis"`
	Render               Render                `toml:"render"`
	Logging              Logging               `toml:"logging"`
	DefaultExperiment    string                `toml:"default_experiment"`
	BaselineExperiment   string                `toml:"baseline_experiment"`
	ComparisonExperiment string                `toml:"comparison_experiment"`
	Experiments          map[string]Experiment `toml:"experiments"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/melodicsim/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("melodicsim.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Analysis.SaveFigures {
		if err := os.MkdirAll(c.Paths.FigureDir, 0o755); err != nil {
			return fmt.Errorf("create figure directory %q: %w", c.Paths.FigureDir, err)
		}
	}
	return nil
}

// Experiment returns the named experiment. An empty name selects default_experiment.
func (c *Config) Experiment(name string) (string, Experiment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.DefaultExperiment
	}
	if name == "" {
		return "", Experiment{}, errors.New("no experiment selected; pass --experiment or set default_experiment")
	}
	exp, ok := c.Experiments[name]
	if !ok {
		return "", Experiment{}, fmt.Errorf("experiment %q is not configured (known: %s)", name, strings.Join(c.ExperimentNames(), ", "))
	}
	return name, exp, nil
}

// ExperimentNames returns the configured experiment names in sorted order.
func (c *Config) ExperimentNames() []string {
	names := make([]string, 0, len(c.Experiments))
	for name := range c.Experiments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// resolveUnder expands pathValue, anchoring relative paths at base.
func resolveUnder(base, pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if base != "" && !strings.HasPrefix(pathValue, "~") && !filepath.IsAbs(pathValue) {
		pathValue = filepath.Join(base, pathValue)
	}
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
