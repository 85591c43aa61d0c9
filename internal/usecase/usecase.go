// Package usecase sequences a full run: resolve the input, detect shots,
// segment, then cut and upload.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipforge/shotcut/internal/domain/segmenter"
	"github.com/clipforge/shotcut/internal/log"
	"github.com/clipforge/shotcut/internal/pipeline"
	"github.com/clipforge/shotcut/internal/ports"
	"github.com/clipforge/shotcut/internal/types"
)

var ErrNoShots = errors.New("no shots detected")

// Cutter runs the cut-and-upload pipeline over the shared pools.
type Cutter interface {
	Run(ctx context.Context, videoPath string, segments []types.Segment, namePrefix string) ([]types.Clip, pipeline.Timings, error)
}

type Deps struct {
	Fetch  ports.VideoFetcher
	Detect ports.ShotDetector
	Cutter Cutter
}

type Usecase struct {
	d      Deps
	logger zerolog.Logger
}

func New(d Deps) Usecase {
	return Usecase{d: d, logger: log.WithComponent("usecase")}
}

func NewWithLogger(d Deps, logger zerolog.Logger) Usecase {
	return Usecase{d: d, logger: logger}
}

type Input struct {
	Video       string  // local path or http(s) URL
	Name        string  // task-id prefix; clips become name-1, name-2, ...
	MaxDuration float64 // seconds
}

func (in Input) Validate() error {
	if in.Video == "" {
		return errors.New("input video is empty")
	}
	if in.Name == "" {
		return errors.New("name prefix is empty")
	}
	if in.MaxDuration <= 0 {
		return segmenter.ErrInvalidMaxDuration
	}
	return nil
}

// Process runs detect → segment → cut+upload and always returns a
// well-formed report. Per-segment failures only shrink the clip list;
// run-level failures produce a failure report plus the error.
func (u Usecase) Process(ctx context.Context, in Input) (types.Report, error) {
	report := types.Report{
		Status: types.StatusFailure,
		Input:  in.Video,
		Clips:  []types.Clip{},
	}
	totalStart := time.Now()
	fail := func(err error) (types.Report, error) {
		report.Reason = err.Error()
		report.TimeStats.Total = round1(time.Since(totalStart).Seconds())
		return report, err
	}

	if err := in.Validate(); err != nil {
		return fail(err)
	}
	seg, err := segmenter.New(in.MaxDuration)
	if err != nil {
		return fail(err)
	}

	phase := time.Now()
	local, temp, err := u.d.Fetch.Resolve(ctx, in.Video)
	if err != nil {
		return fail(fmt.Errorf("resolve video: %w", err))
	}
	if temp {
		defer func() {
			if err := os.Remove(local); err != nil {
				u.logger.Warn().Err(err).Str("path", local).Msg("remove downloaded video")
			}
		}()
	}
	report.TimeStats.Download = round1(time.Since(phase).Seconds())

	phase = time.Now()
	shots, err := u.d.Detect.DetectShots(ctx, local)
	if err != nil {
		return fail(fmt.Errorf("detect shots: %w", err))
	}
	report.TimeStats.Detect = round1(time.Since(phase).Seconds())
	if len(shots) == 0 {
		return fail(ErrNoShots)
	}
	u.logger.Info().Int("shots", len(shots)).Msg("shots detected")

	segments := seg.Segment(shots)
	if len(segments) == 0 {
		return fail(pipeline.ErrNoSegments)
	}
	if gaps := segmenter.Gaps(segments); len(gaps) > 0 {
		// Advisory only; the segmenter produces none by construction.
		u.logger.Warn().Int("gaps", len(gaps)).Msg("segment continuity check failed")
	}
	u.logger.Info().Int("segments", len(segments)).Float64("max_duration", in.MaxDuration).Msg("segmentation done")

	clips, tm, err := u.d.Cutter.Run(ctx, local, segments, in.Name)
	if err != nil {
		return fail(fmt.Errorf("cut and upload: %w", err))
	}
	report.TimeStats.Cut = round1(tm.Cut.Seconds())
	report.TimeStats.Upload = round1(tm.Upload.Seconds())
	report.TimeStats.Total = round1(time.Since(totalStart).Seconds())

	report.Status = types.StatusSuccess
	report.Clips = clips
	report.Total = len(clips)
	return report, nil
}

// SegmentOnly resolves the input, detects shots and returns the segment
// list without cutting or uploading anything.
func (u Usecase) SegmentOnly(ctx context.Context, in Input) ([]types.Segment, segmenter.Stats, error) {
	if in.Video == "" {
		return nil, segmenter.Stats{}, errors.New("input video is empty")
	}
	seg, err := segmenter.New(in.MaxDuration)
	if err != nil {
		return nil, segmenter.Stats{}, err
	}

	local, temp, err := u.d.Fetch.Resolve(ctx, in.Video)
	if err != nil {
		return nil, segmenter.Stats{}, fmt.Errorf("resolve video: %w", err)
	}
	if temp {
		defer os.Remove(local)
	}

	shots, err := u.d.Detect.DetectShots(ctx, local)
	if err != nil {
		return nil, segmenter.Stats{}, fmt.Errorf("detect shots: %w", err)
	}
	if len(shots) == 0 {
		return nil, segmenter.Stats{}, ErrNoShots
	}

	segments := seg.Segment(shots)
	return segments, seg.Stats(segments), nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
