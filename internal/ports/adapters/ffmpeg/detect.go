package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/clipforge/shotcut/internal/types"
)

var ptsTimeRe = regexp.MustCompile(`pts_time:([0-9]+(?:\.[0-9]+)?)`)

// DetectShots finds shot boundaries with ffmpeg's scene-change filter and
// returns an ordered shot list covering [0, duration).
//
// The select filter passes frames whose scene score exceeds the threshold
// (plus frame 0 so the first shot is anchored); showinfo prints their
// timestamps on stderr.
func (a *Adapter) DetectShots(ctx context.Context, videoPath string) ([]types.Shot, error) {
	duration, err := a.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	fps, err := a.probeFPS(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("select='gt(scene,%s)+eq(n\\,0)',showinfo",
		strconv.FormatFloat(a.sceneThreshold, 'f', -1, 64))
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-i", videoPath,
		"-vf", filter,
		"-f", "null", "-",
	)
	// showinfo writes to stderr; ffmpeg exits 0 even with no scene changes.
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scene detect: %w\n%s", err, tail(string(b), 400))
	}

	boundaries := parseShowinfoBoundaries(string(b))
	return buildShots(boundaries, duration, fps, a.minShotLen), nil
}

// parseShowinfoBoundaries extracts pts_time values from showinfo output.
func parseShowinfoBoundaries(out string) []float64 {
	var boundaries []float64
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "Parsed_showinfo") {
			continue
		}
		m := ptsTimeRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if t, err := strconv.ParseFloat(m[1], 64); err == nil {
			boundaries = append(boundaries, t)
		}
	}
	sort.Float64s(boundaries)
	return boundaries
}

// buildShots turns boundary timestamps into a covering shot list. The first
// shot starts at 0 whether or not frame 0 was reported, the last shot ends
// at the video duration, and boundaries closer than minLen to the previous
// kept one are dropped.
func buildShots(boundaries []float64, duration, fps, minLen float64) []types.Shot {
	if duration <= 0 {
		return nil
	}

	starts := []float64{0}
	for _, b := range boundaries {
		if b-starts[len(starts)-1] >= minLen && b < duration {
			starts = append(starts, b)
		}
	}

	shots := make([]types.Shot, 0, len(starts))
	for i, start := range starts {
		end := duration
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if end <= start {
			continue
		}
		shots = append(shots, types.Shot{
			StartFrame: int(start * fps),
			EndFrame:   int(end * fps),
			StartTime:  start,
			EndTime:    end,
			Duration:   end - start,
		})
	}
	return shots
}
