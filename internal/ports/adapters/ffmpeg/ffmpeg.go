// Package ffmpeg shells out to ffmpeg/ffprobe for trimming, probing and
// scene-change shot detection.
package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string

	sceneThreshold float64
	minShotLen     float64
}

// Option tunes the detection side of the adapter.
type Option func(*Adapter)

// WithSceneThreshold sets the scene-change score (0..1) above which a frame
// starts a new shot.
func WithSceneThreshold(t float64) Option {
	return func(a *Adapter) { a.sceneThreshold = t }
}

// WithMinShotLen sets the minimum shot length in seconds; boundaries closer
// than this to the previous one are dropped.
func WithMinShotLen(s float64) Option {
	return func(a *Adapter) { a.minShotLen = s }
}

func New(ffmpegPath, ffprobePath string, opts ...Option) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	a := &Adapter{
		ffmpeg:         ffmpegPath,
		ffprobe:        ffprobePath,
		sceneThreshold: 0.3,
		minShotLen:     1.0,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Trim copies [start, end) seconds of src into dst without re-encoding.
// Stream copy keeps the cut fast and cheap; -avoid_negative_ts keeps the
// copied streams playable when the cut lands between keyframes.
func (a *Adapter) Trim(ctx context.Context, src string, start, end float64, dst string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-ss", fmtSeconds(start),
		"-t", fmtSeconds(end-start),
		"-i", src,
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		dst,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg trim: %w\n%s", err, tail(string(b), 400))
	}
	return nil
}

// ProbeDuration returns the container duration in seconds.
func (a *Adapter) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, tail(string(b), 400))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return sec, nil
}

func (a *Adapter) probeFPS(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe frame rate: %w\n%s", err, tail(string(b), 400))
	}
	return parseFrameRate(strings.TrimSpace(string(b)))
}

// parseFrameRate parses ffprobe's rational frame rate ("25/1", "30000/1001").
func parseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(s, "/")
	if !found {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		return f, nil
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("parse frame rate %q: invalid denominator", s)
	}
	return n / d, nil
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
