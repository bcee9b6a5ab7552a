package errorcase

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"melodicsim/internal/dataset"
)

// DefaultResultSuffix is appended to a query id to name its candidate table.
const DefaultResultSuffix = ".csv"

// ErrorPhraseRecord describes why one query missed its ground truth.
type ErrorPhraseRecord struct {
	QueryPhraseName       string `json:"query_phrase_name"`
	GroundTruthPhraseName string `json:"groundtruth_phrase_name"`
	GroundTruthRank       int    `json:"groundtruth_rank"`
	// GroundTruthDTWScore is kept verbatim as written in the result table.
	GroundTruthDTWScore string `json:"groundtruth_phrase_dtw_score"`
	BestMatchPhraseName string `json:"best_match_phrase_name"`
}

// RecordSource locates per-query candidate tables.
type RecordSource struct {
	Dir    string
	Suffix string
}

// BuildErrorPhraseRecord reads `<resultsDir>/<query>.csv` and rebuilds the
// record of query.
func BuildErrorPhraseRecord(resultsDir, query string) (ErrorPhraseRecord, error) {
	return RecordSource{Dir: resultsDir}.Build(query)
}

// Path returns the candidate table location for query.
func (s RecordSource) Path(query string) string {
	suffix := s.Suffix
	if suffix == "" {
		suffix = DefaultResultSuffix
	}
	return dataset.ResultTablePath(s.Dir, query, suffix)
}

// Build reads and interprets the candidate table of query.
func (s RecordSource) Build(query string) (ErrorPhraseRecord, error) {
	path := s.Path(query)
	rows, err := dataset.ReadResultTable(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrorPhraseRecord{}, &CaseError{Kind: ErrResultFileNotFound, Query: query, Path: path}
		}
		return ErrorPhraseRecord{}, &CaseError{Kind: ErrMalformedResult, Query: query, Path: path, Err: err}
	}
	return recordFromRows(query, path, rows)
}

// recordFromRows interprets a candidate table. Row 0 is [_, rank]; row 1 is
// the best match; row rank+1 holds [groundTruth, _, dtwScore].
func recordFromRows(query, path string, rows [][]string) (ErrorPhraseRecord, error) {
	fail := func(kind error, format string, args ...any) (ErrorPhraseRecord, error) {
		return ErrorPhraseRecord{}, &CaseError{Kind: kind, Query: query, Path: path, Detail: fmt.Sprintf(format, args...)}
	}

	if len(rows) == 0 || len(rows[0]) < 2 {
		return fail(ErrMalformedResult, "row 0 must hold the ground-truth rank in field 1")
	}
	rank, err := strconv.Atoi(strings.TrimSpace(rows[0][1]))
	if err != nil {
		return fail(ErrMalformedResult, "ground-truth rank %q is not an integer", rows[0][1])
	}
	gtRow := rank + 1
	if rank < 1 || gtRow >= len(rows) {
		return fail(ErrIndexOutOfRange, "rank %d addresses row %d but the table has %d rows", rank, gtRow, len(rows))
	}
	if len(rows[1]) < 1 {
		return fail(ErrMalformedResult, "row 1 has no candidate name")
	}
	if len(rows[gtRow]) < 3 {
		return fail(ErrMalformedResult, "row %d has %d fields, want at least 3", gtRow, len(rows[gtRow]))
	}

	return ErrorPhraseRecord{
		QueryPhraseName:       query,
		GroundTruthPhraseName: rows[gtRow][0],
		GroundTruthRank:       rank,
		GroundTruthDTWScore:   rows[gtRow][2],
		BestMatchPhraseName:   rows[1][0],
	}, nil
}
