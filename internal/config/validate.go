package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateExperiments(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.RankThreshold < 0 {
		return errors.New("analysis.rank_threshold must be >= 0")
	}
	if c.Analysis.DivergentThreshold < 0 {
		return errors.New("analysis.divergent_threshold must be >= 0")
	}
	if c.Analysis.Workers <= 0 {
		return errors.New("analysis.workers must be positive")
	}
	return nil
}

func (c *Config) validateRender() error {
	switch c.Render.Format {
	case "png", "svg", "pdf":
	default:
		return fmt.Errorf("render.format: unsupported value %q (use png, svg, or pdf)", c.Render.Format)
	}
	if c.Render.AlignmentOffsetCents < 0 {
		return errors.New("render.alignment_offset_cents must be >= 0")
	}
	return nil
}

func (c *Config) validateExperiments() error {
	for _, name := range c.ExperimentNames() {
		exp := c.Experiments[name]
		if err := ensureSetMap(name, map[string]string{
			"ranking_file":            exp.RankingFile,
			"query_pitch_tracks_file": exp.QueryPitchTracksFile,
			"results_dir":             exp.ResultsDir,
			"alignment_dir":           exp.AlignmentDir,
		}); err != nil {
			return err
		}
	}
	refs := []struct{ key, name string }{
		{"default_experiment", c.DefaultExperiment},
		{"baseline_experiment", c.BaselineExperiment},
		{"comparison_experiment", c.ComparisonExperiment},
	}
	for _, ref := range refs {
		if ref.name == "" {
			continue
		}
		if _, ok := c.Experiments[ref.name]; !ok {
			return fmt.Errorf("%s references unknown experiment %q", ref.key, ref.name)
		}
	}
	return nil
}

func ensureSetMap(experiment string, values map[string]string) error {
	for _, key := range []string{"ranking_file", "query_pitch_tracks_file", "results_dir", "alignment_dir"} {
		if strings.TrimSpace(values[key]) == "" {
			return fmt.Errorf("experiments.%s.%s must be set", experiment, key)
		}
	}
	return nil
}
