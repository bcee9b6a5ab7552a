package errorcase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"melodicsim/internal/dataset"
	"melodicsim/internal/errorcase"
	"melodicsim/internal/logging"
	"melodicsim/internal/testsupport"
)

type recordingRenderer struct {
	mu         sync.Mutex
	contours   []errorcase.TripleContourRequest
	alignments []errorcase.AlignmentViewRequest
	failOn     string
}

func (r *recordingRenderer) RenderTripleContour(_ context.Context, req errorcase.TripleContourRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.QueryName == r.failOn {
		return errors.New("canvas unavailable")
	}
	r.contours = append(r.contours, req)
	return nil
}

func (r *recordingRenderer) RenderAlignmentView(_ context.Context, req errorcase.AlignmentViewRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alignments = append(r.alignments, req)
	return nil
}

func candidateRows(rank int, groundTruth, score string) [][]string {
	rows := [][]string{{"_", fmt.Sprint(rank)}, {"best", "_", "0.01"}}
	for i := 2; i <= rank; i++ {
		rows = append(rows, []string{fmt.Sprintf("filler%d", i), "_", "0.5"})
	}
	return append(rows, []string{groundTruth, "_", score})
}

func fixtureInputs(t *testing.T, ranking string, results map[string][][]string) errorcase.Inputs {
	t.Helper()
	dir := t.TempDir()
	for query, rows := range results {
		testsupport.WriteCSV(t, filepath.Join(dir, query+".csv"), rows)
	}
	return errorcase.Inputs{
		Ranking: mustRanking(t, ranking),
		PitchTracks: dataset.QueryPitchTracks{
			"q1": {100, 110, 120},
			"q2": {200, 210},
			"q3": {300},
		},
		Scores: dataset.Scores{
			"best":  {PitchtrackCents: dataset.Contour{0, 1}},
			"truth": {PitchtrackCents: dataset.Contour{5, 6}},
		},
		PitchTracksFile: filepath.Join(dir, "query_pitchtracks.json"),
		ScoresFile:      filepath.Join(dir, "scores.json"),
		ResultsDir:      dir,
		AlignmentDir:    filepath.Join(dir, "paths"),
	}
}

func TestCollectAndDispatchRendersOnlyErrorCases(t *testing.T) {
	in := fixtureInputs(t, `{"q1":[15],"q2":[3]}`, map[string][][]string{
		"q1": candidateRows(15, "truth", "0.77"),
	})
	renderer := &recordingRenderer{}
	collector := errorcase.NewCollector(renderer, logging.NewNop())

	records, err := collector.CollectAndDispatch(context.Background(), in, errorcase.Options{RankThreshold: 10, Save: true, OutputDir: "/figs"})
	if err != nil {
		t.Fatalf("CollectAndDispatch: %v", err)
	}
	if len(records) != 1 || records[0].QueryPhraseName != "q1" {
		t.Fatalf("unexpected records %+v", records)
	}
	if len(renderer.contours) != 1 || len(renderer.alignments) != 1 {
		t.Fatalf("expected one dispatch, got %d/%d", len(renderer.contours), len(renderer.alignments))
	}

	contour := renderer.contours[0]
	if contour.FileBaseName != "q1_rank>10" || !contour.Save || contour.OutputDir != "/figs" {
		t.Fatalf("unexpected contour request %+v", contour)
	}
	if contour.GroundTruthRank != 15 || len(contour.Query) != 3 || contour.BestMatch[1] != 1 {
		t.Fatalf("contour request carries wrong data: %+v", contour)
	}
	align := renderer.alignments[0]
	if align.DTWScore != "0.77" || align.GroundTruthName != "truth" || align.AlignmentDir != in.AlignmentDir {
		t.Fatalf("unexpected alignment request %+v", align)
	}
}

func TestCollectAndDispatchNoCases(t *testing.T) {
	in := fixtureInputs(t, `{"q1":[1],"q2":[3]}`, nil)
	renderer := &recordingRenderer{}

	records, err := errorcase.NewCollector(renderer, nil).CollectAndDispatch(context.Background(), in, errorcase.Options{RankThreshold: 10})
	if err != nil {
		t.Fatalf("CollectAndDispatch: %v", err)
	}
	if len(records) != 0 || len(renderer.contours) != 0 {
		t.Fatalf("expected nothing dispatched, got %+v", records)
	}
}

func TestCollectAndDispatchMissingPitchTrack(t *testing.T) {
	in := fixtureInputs(t, `{"q9":[15]}`, map[string][][]string{
		"q9": candidateRows(15, "truth", "0.1"),
	})
	renderer := &recordingRenderer{}

	_, err := errorcase.NewCollector(renderer, nil).CollectAndDispatch(context.Background(), in, errorcase.Options{RankThreshold: 10})
	if !errors.Is(err, errorcase.ErrMissingPitchTrack) {
		t.Fatalf("expected ErrMissingPitchTrack, got %v", err)
	}
	var caseErr *errorcase.CaseError
	if !errors.As(err, &caseErr) || caseErr.Path != in.PitchTracksFile {
		t.Fatalf("expected diagnostic naming %s, got %v", in.PitchTracksFile, err)
	}
	if len(renderer.contours) != 0 {
		t.Fatalf("renderer should not be called")
	}
}

func TestCollectAndDispatchMissingScoreRecord(t *testing.T) {
	in := fixtureInputs(t, `{"q1":[12]}`, map[string][][]string{
		"q1": candidateRows(12, "unknown_phrase", "0.1"),
	})

	_, err := errorcase.NewCollector(&recordingRenderer{}, nil).CollectAndDispatch(context.Background(), in, errorcase.Options{RankThreshold: 10})
	if !errors.Is(err, errorcase.ErrMissingScoreRecord) {
		t.Fatalf("expected ErrMissingScoreRecord, got %v", err)
	}
	var caseErr *errorcase.CaseError
	if !errors.As(err, &caseErr) || caseErr.Path != in.ScoresFile {
		t.Fatalf("expected diagnostic naming %s, got %v", in.ScoresFile, err)
	}
}

func TestCollectAndDispatchRenderFailure(t *testing.T) {
	in := fixtureInputs(t, `{"q1":[12]}`, map[string][][]string{
		"q1": candidateRows(12, "truth", "0.1"),
	})
	renderer := &recordingRenderer{failOn: "q1"}

	_, err := errorcase.NewCollector(renderer, nil).CollectAndDispatch(context.Background(), in, errorcase.Options{RankThreshold: 10})
	if !errors.Is(err, errorcase.ErrRender) {
		t.Fatalf("expected ErrRender, got %v", err)
	}
}

func TestCollectAndDispatchIsRepeatable(t *testing.T) {
	in := fixtureInputs(t, `{"q3":[14],"q1":[12],"q2":[11]}`, map[string][][]string{
		"q1": candidateRows(12, "truth", "0.1"),
		"q2": candidateRows(11, "truth", "0.2"),
		"q3": candidateRows(14, "truth", "0.3"),
	})
	opts := errorcase.Options{RankThreshold: 10, Workers: 3}

	first, err := errorcase.NewCollector(&recordingRenderer{}, nil).CollectAndDispatch(context.Background(), in, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := errorcase.NewCollector(&recordingRenderer{}, nil).CollectAndDispatch(context.Background(), in, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("serialized runs differ")
	}
	if first[0].QueryPhraseName != "q3" || first[2].QueryPhraseName != "q2" {
		t.Fatalf("records not in ranking order: %+v", first)
	}
}

func TestCollectAndDispatchCanceled(t *testing.T) {
	in := fixtureInputs(t, `{"q1":[12]}`, map[string][][]string{
		"q1": candidateRows(12, "truth", "0.1"),
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := errorcase.NewCollector(&recordingRenderer{}, nil).CollectAndDispatch(ctx, in, errorcase.Options{RankThreshold: 10})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildRecordsReportsLowestIndexError(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 8; i++ {
		if i == 3 || i == 6 {
			continue
		}
		testsupport.WriteCSV(t, filepath.Join(dir, fmt.Sprintf("q%d.csv", i)), candidateRows(2, "truth", "0.1"))
	}
	queries := []string{"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7"}

	_, err := errorcase.BuildRecords(context.Background(), errorcase.RecordSource{Dir: dir}, queries, 4)
	var caseErr *errorcase.CaseError
	if !errors.As(err, &caseErr) || caseErr.Query != "q3" {
		t.Fatalf("expected error for q3, got %v", err)
	}
}

func TestBuildRecordsPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	var queries []string
	for i := 0; i < 16; i++ {
		q := fmt.Sprintf("q%02d", i)
		queries = append(queries, q)
		testsupport.WriteCSV(t, filepath.Join(dir, q+".csv"), candidateRows(1+i%3, "truth", fmt.Sprint(i)))
	}

	records, err := errorcase.BuildRecords(context.Background(), errorcase.RecordSource{Dir: dir}, queries, 5)
	if err != nil {
		t.Fatalf("BuildRecords: %v", err)
	}
	for i, rec := range records {
		if rec.QueryPhraseName != queries[i] || rec.GroundTruthDTWScore != fmt.Sprint(i) {
			t.Fatalf("record %d out of order: %+v", i, rec)
		}
	}
}
