package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"melodicsim/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config rooted in a unique temp directory per test.
// Paths are absolute, so the config does not need to go through config.Load.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.ScoresFile = filepath.Join(base, "scores.json")
	cfgVal.Paths.FigureDir = filepath.Join(base, "figures")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Analysis.Workers = 2

	builder := &configBuilder{cfg: &cfgVal}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRankThreshold overrides analysis.rank_threshold.
func WithRankThreshold(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.RankThreshold = n
	}
}

// WithSaveFigures enables writing figures to the figure directory.
func WithSaveFigures() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.SaveFigures = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return cfg.Paths.DataDir
}

// WriteConfigFile serializes cfg as TOML inside the base directory and
// returns its path, for commands that load configuration themselves.
func WriteConfigFile(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "melodicsim.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
