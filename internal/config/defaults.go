package config

const (
	defaultDataDir              = "."
	defaultScoresFile           = "scores.json"
	defaultFigureDir            = "errorAnalysis/figures"
	defaultLogDir               = "~/.local/share/melodicsim/logs"
	defaultRankThreshold        = 10
	defaultDivergentThreshold   = 10
	defaultWorkers              = 4
	defaultResultSuffix         = ".csv"
	defaultRenderWidthCM        = 24
	defaultRenderHeightCM       = 12
	defaultRenderFormat         = "png"
	defaultAlignmentStride      = 5
	defaultAlignmentOffsetCents = 1200
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScoresFile: defaultScoresFile,
			FigureDir:  defaultFigureDir,
			LogDir:     defaultLogDir,
		},
		Analysis: Analysis{
			RankThreshold:      defaultRankThreshold,
			DivergentThreshold: defaultDivergentThreshold,
			Workers:            defaultWorkers,
			ResultSuffix:       defaultResultSuffix,
		},
		Render: Render{
			WidthCM:              defaultRenderWidthCM,
			HeightCM:             defaultRenderHeightCM,
			Format:               defaultRenderFormat,
			AlignmentStride:      defaultAlignmentStride,
			AlignmentOffsetCents: defaultAlignmentOffsetCents,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Experiments: map[string]Experiment{},
	}
}
