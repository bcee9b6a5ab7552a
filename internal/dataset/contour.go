package dataset

import (
	"encoding/json"
	"math"
)

// Contour is a time-ordered pitch sequence in cents. NaN marks an unvoiced frame.
type Contour []float64

// UnmarshalJSON decodes a numeric array, mapping null entries to NaN.
func (c *Contour) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Contour, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*c = out
	return nil
}

// Segment is a half-open run [Start, End) of voiced frames.
type Segment struct {
	Start int
	End   int
}

// VoicedSegments returns the maximal runs of finite values in order.
func (c Contour) VoicedSegments() []Segment {
	var segments []Segment
	start := -1
	for i, v := range c {
		voiced := !math.IsNaN(v) && !math.IsInf(v, 0)
		switch {
		case voiced && start < 0:
			start = i
		case !voiced && start >= 0:
			segments = append(segments, Segment{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		segments = append(segments, Segment{Start: start, End: len(c)})
	}
	return segments
}

// Voiced reports how many frames carry a finite pitch value.
func (c Contour) Voiced() int {
	n := 0
	for _, seg := range c.VoicedSegments() {
		n += seg.End - seg.Start
	}
	return n
}
