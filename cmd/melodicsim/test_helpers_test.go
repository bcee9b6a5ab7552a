package main

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"melodicsim/internal/config"
	"melodicsim/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

// setupCLITestEnv writes two experiments: "base" retrieves q2 at rank 3 and
// misses q1 at rank 12; "alt" misses q2 at rank 15.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, opts...)
	testsupport.WriteScores(t, cfg, map[string][]float64{
		"best":  {100, 110, 120},
		"truth": {200, 210, 220},
	})
	testsupport.WriteExperiment(t, cfg, testsupport.ExperimentFixture{
		Name:    "base",
		Ranking: `{"q2":[3,0.5],"q1":[12,0.9]}`,
		PitchTracks: map[string][]float64{
			"q1": {150, 160, 170, 180},
			"q2": {300, 310},
		},
		Results: map[string][][]string{
			"q1": candidateTable(12, "truth", "0.875"),
			"q2": candidateTable(3, "truth", "0.25"),
		},
		Alignments: map[string][][2]int{
			"q1_truth": {{0, 0}, {1, 1}, {2, 1}, {3, 2}},
		},
	})
	testsupport.WriteExperiment(t, cfg, testsupport.ExperimentFixture{
		Name:    "alt",
		Ranking: `{"q2":[15],"q1":[20]}`,
	})
	cfg.BaselineExperiment = "base"
	cfg.ComparisonExperiment = "alt"

	return &cliTestEnv{cfg: cfg, configPath: testsupport.WriteConfigFile(t, cfg)}
}

func candidateTable(rank int, groundTruth, score string) [][]string {
	rows := [][]string{{"_", strconv.Itoa(rank)}, {"best", "_", "0.01"}}
	for i := 2; i <= rank; i++ {
		rows = append(rows, []string{"filler" + strconv.Itoa(i), "_", "0.5"})
	}
	return append(rows, []string{groundTruth, "_", score})
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
