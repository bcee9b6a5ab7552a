package errorcase

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"melodicsim/internal/dataset"
	"melodicsim/internal/logging"
)

// TripleContourRequest asks for a figure overlaying the query contour with
// the ground-truth and best-match reference contours.
type TripleContourRequest struct {
	Query           dataset.Contour
	GroundTruth     dataset.Contour
	BestMatch       dataset.Contour
	QueryName       string
	GroundTruthRank int
	Save            bool
	OutputDir       string
	FileBaseName    string
}

// AlignmentViewRequest asks for a figure of the precomputed DTW alignment
// between the query and its ground-truth reference.
type AlignmentViewRequest struct {
	AlignmentDir    string
	Query           dataset.Contour
	GroundTruth     dataset.Contour
	DTWScore        string
	GroundTruthRank int
	QueryName       string
	GroundTruthName string
	Save            bool
	OutputDir       string
	FileBaseName    string
}

// Renderer draws the diagnostic figures of an error case.
type Renderer interface {
	RenderTripleContour(ctx context.Context, req TripleContourRequest) error
	RenderAlignmentView(ctx context.Context, req AlignmentViewRequest) error
}

// Inputs bundles the loaded data a collection run reads from.
type Inputs struct {
	Ranking     *dataset.Ranking
	PitchTracks dataset.QueryPitchTracks
	Scores      dataset.Scores
	// PitchTracksFile and ScoresFile name the sources of PitchTracks and
	// Scores in diagnostics.
	PitchTracksFile string
	ScoresFile      string
	ResultsDir      string
	AlignmentDir    string
	ResultSuffix    string
}

// Options controls a collection run.
type Options struct {
	// RankThreshold is N: queries whose ground-truth rank exceeds N are error cases.
	RankThreshold int
	// Workers bounds concurrent table reads; values below 1 mean sequential.
	Workers   int
	Save      bool
	OutputDir string
}

// Collector selects error cases and hands them to a Renderer.
type Collector struct {
	renderer Renderer
	logger   *slog.Logger
}

// NewCollector returns a Collector dispatching to renderer.
func NewCollector(renderer Renderer, logger *slog.Logger) *Collector {
	return &Collector{
		renderer: renderer,
		logger:   logging.NewComponentLogger(logger, "errorcase"),
	}
}

// FileBaseName names the figures of one error case.
func FileBaseName(query string, threshold int) string {
	return query + "_rank>" + strconv.Itoa(threshold)
}

// CollectAndDispatch finds every query ranked above opts.RankThreshold,
// rebuilds its record, and renders both figures for it. Records are returned
// in ranking order. The first failure, in that same order, aborts the run.
func (c *Collector) CollectAndDispatch(ctx context.Context, in Inputs, opts Options) ([]ErrorPhraseRecord, error) {
	logger := logging.WithContext(ctx, c.logger)

	queries := FindAboveRankThreshold(in.Ranking, opts.RankThreshold)
	source := RecordSource{Dir: in.ResultsDir, Suffix: in.ResultSuffix}
	records, err := BuildRecords(ctx, source, queries, opts.Workers)
	if err != nil {
		return nil, err
	}
	logger.Info("error cases collected",
		logging.Int("count", len(records)),
		logging.Int("threshold", opts.RankThreshold),
		logging.Int("queries", in.Ranking.Len()),
	)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("processing error case",
			logging.String(logging.FieldQuery, rec.QueryPhraseName),
			logging.Int(logging.FieldRank, rec.GroundTruthRank),
		)
		if err := c.dispatch(ctx, in, opts, rec); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (c *Collector) dispatch(ctx context.Context, in Inputs, opts Options, rec ErrorPhraseRecord) error {
	query, ok := in.PitchTracks[rec.QueryPhraseName]
	if !ok {
		return &CaseError{Kind: ErrMissingPitchTrack, Query: rec.QueryPhraseName, Path: in.PitchTracksFile}
	}
	groundTruth, ok := in.Scores.Contour(rec.GroundTruthPhraseName)
	if !ok {
		return &CaseError{Kind: ErrMissingScoreRecord, Query: rec.QueryPhraseName, Path: in.ScoresFile, Detail: "ground truth " + rec.GroundTruthPhraseName}
	}
	bestMatch, ok := in.Scores.Contour(rec.BestMatchPhraseName)
	if !ok {
		return &CaseError{Kind: ErrMissingScoreRecord, Query: rec.QueryPhraseName, Path: in.ScoresFile, Detail: "best match " + rec.BestMatchPhraseName}
	}

	base := FileBaseName(rec.QueryPhraseName, opts.RankThreshold)
	if err := c.renderer.RenderTripleContour(ctx, TripleContourRequest{
		Query:           query,
		GroundTruth:     groundTruth,
		BestMatch:       bestMatch,
		QueryName:       rec.QueryPhraseName,
		GroundTruthRank: rec.GroundTruthRank,
		Save:            opts.Save,
		OutputDir:       opts.OutputDir,
		FileBaseName:    base,
	}); err != nil {
		return &CaseError{Kind: ErrRender, Query: rec.QueryPhraseName, Detail: "triple contour", Err: err}
	}
	if err := c.renderer.RenderAlignmentView(ctx, AlignmentViewRequest{
		AlignmentDir:    in.AlignmentDir,
		Query:           query,
		GroundTruth:     groundTruth,
		DTWScore:        rec.GroundTruthDTWScore,
		GroundTruthRank: rec.GroundTruthRank,
		QueryName:       rec.QueryPhraseName,
		GroundTruthName: rec.GroundTruthPhraseName,
		Save:            opts.Save,
		OutputDir:       opts.OutputDir,
		FileBaseName:    base,
	}); err != nil {
		return &CaseError{Kind: ErrRender, Query: rec.QueryPhraseName, Detail: "alignment view", Err: err}
	}
	return nil
}

// BuildRecords builds the record of every query, reading up to workers tables
// at once. The output, and the error reported on failure, follow the order of
// queries regardless of which read finishes first.
func BuildRecords(ctx context.Context, source RecordSource, queries []string, workers int) ([]ErrorPhraseRecord, error) {
	if workers < 1 {
		workers = 1
	}
	records := make([]ErrorPhraseRecord, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			records[i], errs[i] = source.Build(query)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := firstError(errs); err != nil {
		return nil, err
	}
	return records, nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
