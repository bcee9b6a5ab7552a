package render

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"melodicsim/internal/config"
	"melodicsim/internal/dataset"
	"melodicsim/internal/errorcase"
	"melodicsim/internal/logging"
)

// Figure name suffixes appended to the error case base name.
const (
	ContourSuffix   = "_contours"
	AlignmentSuffix = "_alignment"
)

var (
	queryColor       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	groundTruthColor = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	bestMatchColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	linkColor        = color.RGBA{R: 127, G: 127, B: 127, A: 160}
)

// Options controls figure geometry and output.
type Options struct {
	Width  vg.Length
	Height vg.Length
	// Format is the saved file extension: png, svg or pdf.
	Format string
	// AlignmentStride draws one link for every Nth path step.
	AlignmentStride int
	// AlignmentOffsetCents lifts the ground-truth contour in the alignment view.
	AlignmentOffsetCents float64
}

// OptionsFromConfig converts the [render] section into Options.
func OptionsFromConfig(cfg config.Render) Options {
	return Options{
		Width:                vg.Length(cfg.WidthCM) * vg.Centimeter,
		Height:               vg.Length(cfg.HeightCM) * vg.Centimeter,
		Format:               cfg.Format,
		AlignmentStride:      cfg.AlignmentStride,
		AlignmentOffsetCents: cfg.AlignmentOffsetCents,
	}
}

// Renderer implements errorcase.Renderer on top of gonum/plot.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

var _ errorcase.Renderer = (*Renderer)(nil)

// New returns a Renderer. Zero-valued options fall back to a 24x10 cm PNG
// with every alignment step linked.
func New(opts Options, logger *slog.Logger) *Renderer {
	if opts.Width <= 0 {
		opts.Width = 24 * vg.Centimeter
	}
	if opts.Height <= 0 {
		opts.Height = 10 * vg.Centimeter
	}
	opts.Format = strings.ToLower(strings.TrimSpace(opts.Format))
	if opts.Format == "" {
		opts.Format = "png"
	}
	if opts.AlignmentStride < 1 {
		opts.AlignmentStride = 1
	}
	return &Renderer{opts: opts, logger: logging.NewComponentLogger(logger, "render")}
}

// FigurePath returns where a figure with the given base name and suffix is saved.
func (r *Renderer) FigurePath(dir, base, suffix string) string {
	return filepath.Join(dir, base+suffix+"."+r.opts.Format)
}

// RenderTripleContour overlays the query contour with the ground-truth and
// best-match reference contours on a shared frame axis.
func (r *Renderer) RenderTripleContour(ctx context.Context, req errorcase.TripleContourRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (ground truth rank %d)", req.QueryName, req.GroundTruthRank)
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "cents"
	p.Add(plotter.NewGrid())

	series := []struct {
		name    string
		contour dataset.Contour
		color   color.Color
	}{
		{"query", req.Query, queryColor},
		{"ground truth", req.GroundTruth, groundTruthColor},
		{"best match", req.BestMatch, bestMatchColor},
	}
	for _, s := range series {
		if err := addContour(p, s.name, s.contour, 0, s.color); err != nil {
			return err
		}
	}
	return r.finish(ctx, p, req.Save, req.OutputDir, req.FileBaseName, ContourSuffix)
}

// RenderAlignmentView draws the query contour, the ground-truth contour lifted
// by AlignmentOffsetCents, and links between the frames paired by the
// precomputed DTW path.
func (r *Renderer) RenderAlignmentView(ctx context.Context, req errorcase.AlignmentViewRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := dataset.LoadAlignmentPath(dataset.AlignmentPathFile(req.AlignmentDir, req.QueryName, req.GroundTruthName))
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s: DTW score %s, rank %d", req.QueryName, req.GroundTruthName, req.DTWScore, req.GroundTruthRank)
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "cents"

	links, err := alignmentLinks(path, req.Query, req.GroundTruth, r.opts.AlignmentStride, r.opts.AlignmentOffsetCents)
	if err != nil {
		return err
	}
	for _, link := range links {
		line, err := plotter.NewLine(link)
		if err != nil {
			return fmt.Errorf("alignment link: %w", err)
		}
		line.LineStyle.Color = linkColor
		line.LineStyle.Width = vg.Points(0.5)
		line.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(line)
	}

	if err := addContour(p, "query", req.Query, 0, queryColor); err != nil {
		return err
	}
	if err := addContour(p, "ground truth", req.GroundTruth, r.opts.AlignmentOffsetCents, groundTruthColor); err != nil {
		return err
	}
	r.logger.Debug("alignment view drawn",
		logging.String(logging.FieldQuery, req.QueryName),
		logging.Int("path_steps", len(path)),
		logging.Int("links", len(links)),
	)
	return r.finish(ctx, p, req.Save, req.OutputDir, req.FileBaseName, AlignmentSuffix)
}

// alignmentLinks returns a two-point line for every stride-th path step whose
// frames are both voiced.
func alignmentLinks(path dataset.AlignmentPath, query, reference dataset.Contour, stride int, offset float64) ([]plotter.XYs, error) {
	if stride < 1 {
		stride = 1
	}
	var links []plotter.XYs
	for i := 0; i < len(path); i += stride {
		qi, ri := path[i][0], path[i][1]
		if qi < 0 || qi >= len(query) || ri < 0 || ri >= len(reference) {
			return nil, fmt.Errorf("alignment step %d (%d,%d) outside contours of length %d and %d", i, qi, ri, len(query), len(reference))
		}
		if !finite(query[qi]) || !finite(reference[ri]) {
			continue
		}
		links = append(links, plotter.XYs{
			{X: float64(qi), Y: query[qi]},
			{X: float64(ri), Y: reference[ri] + offset},
		})
	}
	return links, nil
}

// addContour plots every voiced segment of contour as its own line so gaps
// stay visible. Only the first segment carries the legend entry.
func addContour(p *plot.Plot, name string, contour dataset.Contour, offset float64, c color.Color) error {
	for i, seg := range contour.VoicedSegments() {
		pts := make(plotter.XYs, 0, seg.End-seg.Start)
		for frame := seg.Start; frame < seg.End; frame++ {
			pts = append(pts, plotter.XY{X: float64(frame), Y: contour[frame] + offset})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s contour: %w", name, err)
		}
		line.LineStyle.Color = c
		line.LineStyle.Width = vg.Points(1.2)
		p.Add(line)
		if i == 0 {
			p.Legend.Add(name, line)
		}
	}
	return nil
}

func (r *Renderer) finish(ctx context.Context, p *plot.Plot, save bool, dir, base, suffix string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !save {
		canvas := vgimg.New(r.opts.Width, r.opts.Height)
		p.Draw(draw.New(canvas))
		return nil
	}
	if strings.TrimSpace(dir) == "" {
		return errors.New("figure directory is not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure figure directory: %w", err)
	}
	target := r.FigurePath(dir, base, suffix)
	if err := p.Save(r.opts.Width, r.opts.Height, target); err != nil {
		return fmt.Errorf("save figure %s: %w", target, err)
	}
	r.logger.Info("figure saved", logging.String(logging.FieldPath, target))
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
