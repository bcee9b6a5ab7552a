package testsupport

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"melodicsim/internal/config"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteJSON encodes v as JSON at path.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	WriteFile(t, path, string(data))
}

// WriteCSV writes rows at path. Rows may have differing lengths.
func WriteCSV(t testing.TB, path string, rows [][]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ExperimentFixture describes the on-disk inputs of one experiment.
type ExperimentFixture struct {
	Name string
	// Ranking is written verbatim so tests control key order.
	Ranking     string
	PitchTracks map[string][]float64
	// Results maps a query id to its candidate table rows.
	Results map[string][][]string
	// Alignments maps "<query>_<reference>" to DTW path steps.
	Alignments map[string][][2]int
}

// WriteExperiment lays out fx under the config's data directory, registers it
// on cfg, and returns the experiment paths.
func WriteExperiment(t testing.TB, cfg *config.Config, fx ExperimentFixture) config.Experiment {
	t.Helper()

	root := filepath.Join(BaseDir(cfg), fx.Name)
	exp := config.Experiment{
		RankingFile:          filepath.Join(root, "list_rank.json"),
		QueryPitchTracksFile: filepath.Join(root, "query_pitchtracks.json"),
		ResultsDir:           filepath.Join(root, "results"),
		AlignmentDir:         filepath.Join(root, "resultsPath"),
	}
	WriteFile(t, exp.RankingFile, fx.Ranking)
	tracks := fx.PitchTracks
	if tracks == nil {
		tracks = map[string][]float64{}
	}
	WriteJSON(t, exp.QueryPitchTracksFile, tracks)
	for query, rows := range fx.Results {
		WriteCSV(t, filepath.Join(exp.ResultsDir, query+".csv"), rows)
	}
	if err := os.MkdirAll(exp.AlignmentDir, 0o755); err != nil {
		t.Fatalf("mkdir alignment dir: %v", err)
	}
	for pair, steps := range fx.Alignments {
		rows := make([][]string, 0, len(steps))
		for _, step := range steps {
			rows = append(rows, []string{strconv.Itoa(step[0]), strconv.Itoa(step[1])})
		}
		WriteCSV(t, filepath.Join(exp.AlignmentDir, pair+".csv"), rows)
	}

	if cfg.Experiments == nil {
		cfg.Experiments = map[string]config.Experiment{}
	}
	cfg.Experiments[fx.Name] = exp
	if cfg.DefaultExperiment == "" {
		cfg.DefaultExperiment = fx.Name
	}
	return exp
}

// WriteScores writes reference contours to the config's scores file.
func WriteScores(t testing.TB, cfg *config.Config, contours map[string][]float64) {
	t.Helper()

	records := make(map[string]map[string][]float64, len(contours))
	for name, cents := range contours {
		records[name] = map[string][]float64{"pitchtrack_cents": cents}
	}
	WriteJSON(t, cfg.Paths.ScoresFile, records)
}
