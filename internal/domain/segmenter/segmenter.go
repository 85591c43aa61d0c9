// Package segmenter packs an ordered shot list into duration-bounded
// segments with seamless stitching: consecutive segments share exact
// boundaries and no input time is lost.
package segmenter

import (
	"errors"
	"math"

	"github.com/clipforge/shotcut/internal/types"
)

// ContinuityTolerance is the float slack allowed between adjacent segment
// boundaries before Gaps reports them.
const ContinuityTolerance = 0.01

// remainderTolerance absorbs float error when splitting an oversize shot:
// a shot whose duration is a near-exact multiple of the max must yield
// exactly floor(duration/max) chunks, not a trailing epsilon segment.
const remainderTolerance = 1e-9

var ErrInvalidMaxDuration = errors.New("max duration must be > 0")

type Segmenter struct {
	max float64
}

func New(maxDuration float64) (*Segmenter, error) {
	if maxDuration <= 0 {
		return nil, ErrInvalidMaxDuration
	}
	return &Segmenter{max: maxDuration}, nil
}

func (s *Segmenter) MaxDuration() float64 { return s.max }

// Segment walks the shots left to right, absorbing them into the segment
// under construction until the next shot would exceed the max duration.
//
// Segment boundaries are anchored to the previous segment's close point,
// not to shot timestamps. The first segment always starts at 0 and an
// oversize shot's chunks start where the previous segment closed, even when
// that differs from the shot's own recorded start. Global seamlessness
// takes priority over per-shot timestamp fidelity.
func (s *Segmenter) Segment(shots []types.Shot) []types.Segment {
	if len(shots) == 0 {
		return nil
	}

	var segments []types.Segment
	currentStart := 0.0
	accumulated := 0.0

	for _, shot := range shots {
		switch {
		// Fits: a shot that exactly fills the remaining capacity is
		// absorbed here, not treated as overflow.
		case accumulated+shot.Duration <= s.max:
			accumulated += shot.Duration

		// Oversize shot: close the in-progress segment, then hard-split
		// the shot into max-length chunks plus a remainder.
		case shot.Duration > s.max:
			if accumulated > 0 {
				end := currentStart + accumulated
				segments = append(segments, types.Segment{Start: currentStart, End: end})
				currentStart = end
				accumulated = 0
			}

			// Chunk boundaries are computed multiplicatively so repeated
			// subtraction cannot accumulate float error across chunks.
			base := currentStart
			full := int(math.Floor(shot.Duration/s.max + remainderTolerance))
			for i := 0; i < full; i++ {
				segments = append(segments, types.Segment{
					Start: base + float64(i)*s.max,
					End:   base + float64(i+1)*s.max,
				})
			}
			currentStart = base + float64(full)*s.max
			if rem := shot.Duration - float64(full)*s.max; rem > remainderTolerance {
				segments = append(segments, types.Segment{Start: currentStart, End: base + shot.Duration})
				currentStart = base + shot.Duration
			}

		// Overflow: close the in-progress segment and start a new one
		// holding just this shot.
		default:
			if accumulated > 0 {
				end := currentStart + accumulated
				segments = append(segments, types.Segment{Start: currentStart, End: end})
				currentStart = end
			}
			accumulated = shot.Duration
		}
	}

	if accumulated > 0 {
		segments = append(segments, types.Segment{Start: currentStart, End: currentStart + accumulated})
	}

	return segments
}

// Gap records a continuity violation between segment i and i+1.
type Gap struct {
	Index int     // left segment, 0-based
	Delta float64 // next.Start - prev.End
}

// Gaps reports adjacent boundaries that differ by more than the tolerance.
// The segmentation produces none by construction; this is an advisory
// self-check, violations are logged by callers and never raised.
func Gaps(segments []types.Segment) []Gap {
	var gaps []Gap
	for i := 0; i+1 < len(segments); i++ {
		delta := segments[i+1].Start - segments[i].End
		if math.Abs(delta) > ContinuityTolerance {
			gaps = append(gaps, Gap{Index: i, Delta: delta})
		}
	}
	return gaps
}

// Stats summarizes a segmentation result.
type Stats struct {
	Count       int     `json:"segment_count"`
	Total       float64 `json:"total_duration"`
	Avg         float64 `json:"avg_duration"`
	Min         float64 `json:"min_duration"`
	Max         float64 `json:"max_duration"`
	Utilization float64 `json:"utilization_rate"` // percent of count*maxDuration used
}

func (s *Segmenter) Stats(segments []types.Segment) Stats {
	if len(segments) == 0 {
		return Stats{}
	}

	st := Stats{
		Count: len(segments),
		Min:   math.Inf(1),
	}
	for _, seg := range segments {
		d := seg.Duration()
		st.Total += d
		st.Min = math.Min(st.Min, d)
		st.Max = math.Max(st.Max, d)
	}
	st.Avg = st.Total / float64(st.Count)
	st.Utilization = st.Total / (float64(st.Count) * s.max) * 100
	return st
}
