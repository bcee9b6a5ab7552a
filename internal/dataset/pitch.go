package dataset

import (
	"encoding/json"
	"fmt"
	"os"
)

// ScoreRecord is a reference phrase extracted from a melodic score. Fields
// other than the pitch contour are ignored.
type ScoreRecord struct {
	PitchtrackCents Contour `json:"pitchtrack_cents"`
}

// Scores maps reference phrase names to their record.
type Scores map[string]ScoreRecord

// Contour returns the reference contour for name.
func (s Scores) Contour(name string) (Contour, bool) {
	rec, ok := s[name]
	if !ok {
		return nil, false
	}
	return rec.PitchtrackCents, true
}

// QueryPitchTracks maps query phrase identifiers to their extracted contour.
type QueryPitchTracks map[string]Contour

// LoadScores reads a `{phrase: {pitchtrack_cents: [...], ...}}` JSON file.
func LoadScores(path string) (Scores, error) {
	var scores Scores
	if err := decodeJSONFile(path, &scores); err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	return scores, nil
}

// LoadQueryPitchTracks reads a `{query: [cents, ...]}` JSON file.
func LoadQueryPitchTracks(path string) (QueryPitchTracks, error) {
	var tracks QueryPitchTracks
	if err := decodeJSONFile(path, &tracks); err != nil {
		return nil, fmt.Errorf("load query pitch tracks: %w", err)
	}
	return tracks, nil
}

func decodeJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(sanitizeNonFinite(data), v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
