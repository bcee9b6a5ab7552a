package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeExperiments(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeRender()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	c.Paths.DataDir = strings.TrimSpace(c.Paths.DataDir)
	if c.Paths.DataDir == "" {
		if value, ok := os.LookupEnv("MELODICSIM_DATA_DIR"); ok {
			c.Paths.DataDir = strings.TrimSpace(value)
		}
	}
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ScoresFile) == "" {
		c.Paths.ScoresFile = defaultScoresFile
	}
	if c.Paths.ScoresFile, err = resolveUnder(c.Paths.DataDir, c.Paths.ScoresFile); err != nil {
		return fmt.Errorf("paths.scores_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.FigureDir) == "" {
		c.Paths.FigureDir = defaultFigureDir
	}
	if c.Paths.FigureDir, err = resolveUnder(c.Paths.DataDir, c.Paths.FigureDir); err != nil {
		return fmt.Errorf("paths.figure_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExperiments() error {
	if c.Experiments == nil {
		c.Experiments = map[string]Experiment{}
	}
	base := c.Paths.DataDir
	for name, exp := range c.Experiments {
		var err error
		if exp.RankingFile, err = resolveUnder(base, exp.RankingFile); err != nil {
			return fmt.Errorf("experiments.%s.ranking_file: %w", name, err)
		}
		if exp.QueryPitchTracksFile, err = resolveUnder(base, exp.QueryPitchTracksFile); err != nil {
			return fmt.Errorf("experiments.%s.query_pitch_tracks_file: %w", name, err)
		}
		if exp.ResultsDir, err = resolveUnder(base, exp.ResultsDir); err != nil {
			return fmt.Errorf("experiments.%s.results_dir: %w", name, err)
		}
		if exp.AlignmentDir, err = resolveUnder(base, exp.AlignmentDir); err != nil {
			return fmt.Errorf("experiments.%s.alignment_dir: %w", name, err)
		}
		c.Experiments[name] = exp
	}
	c.DefaultExperiment = strings.TrimSpace(c.DefaultExperiment)
	c.BaselineExperiment = strings.TrimSpace(c.BaselineExperiment)
	c.ComparisonExperiment = strings.TrimSpace(c.ComparisonExperiment)
	if c.DefaultExperiment == "" && len(c.Experiments) == 1 {
		for name := range c.Experiments {
			c.DefaultExperiment = name
		}
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	if c.Analysis.Workers <= 0 {
		c.Analysis.Workers = defaultWorkers
	}
	c.Analysis.ResultSuffix = strings.TrimSpace(c.Analysis.ResultSuffix)
	if c.Analysis.ResultSuffix == "" {
		c.Analysis.ResultSuffix = defaultResultSuffix
	}
}

func (c *Config) normalizeRender() {
	c.Render.Format = strings.ToLower(strings.TrimSpace(c.Render.Format))
	if c.Render.Format == "" {
		c.Render.Format = defaultRenderFormat
	}
	if c.Render.WidthCM <= 0 {
		c.Render.WidthCM = defaultRenderWidthCM
	}
	if c.Render.HeightCM <= 0 {
		c.Render.HeightCM = defaultRenderHeightCM
	}
	if c.Render.AlignmentStride <= 0 {
		c.Render.AlignmentStride = defaultAlignmentStride
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
