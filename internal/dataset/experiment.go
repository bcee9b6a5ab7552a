package dataset

import (
	"fmt"

	"melodicsim/internal/config"
)

// Experiment is one fully loaded ranking/pitch-track configuration together
// with the locations of its per-query tables and alignment paths.
type Experiment struct {
	Name         string
	Ranking      *Ranking
	PitchTracks  QueryPitchTracks
	ResultsDir   string
	AlignmentDir string
	ResultSuffix string
}

// LoadExperiment reads the ranking and query pitch tracks named by exp.
func LoadExperiment(name string, exp config.Experiment, resultSuffix string) (*Experiment, error) {
	ranking, err := LoadRanking(exp.RankingFile)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", name, err)
	}
	tracks, err := LoadQueryPitchTracks(exp.QueryPitchTracksFile)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", name, err)
	}
	return &Experiment{
		Name:         name,
		Ranking:      ranking,
		PitchTracks:  tracks,
		ResultsDir:   exp.ResultsDir,
		AlignmentDir: exp.AlignmentDir,
		ResultSuffix: resultSuffix,
	}, nil
}

// LoadRankingOnly reads just the ranking of exp; comparisons between
// experiments need nothing else.
func LoadRankingOnly(name string, exp config.Experiment) (*Ranking, error) {
	ranking, err := LoadRanking(exp.RankingFile)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", name, err)
	}
	return ranking, nil
}
