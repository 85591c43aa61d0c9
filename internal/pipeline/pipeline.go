// Package pipeline cuts segments out of a video and uploads them, fanning
// both stages out over the shared worker pools.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/clipforge/shotcut/internal/log"
	"github.com/clipforge/shotcut/internal/ports"
	"github.com/clipforge/shotcut/internal/types"
	"github.com/clipforge/shotcut/internal/workerpool"
)

// DefaultCutTimeout bounds a single trim invocation.
const DefaultCutTimeout = 300 * time.Second

var ErrNoSegments = errors.New("no segments to process")

type Runner struct {
	trim  ports.VideoTrimmer
	store ports.ObjectUploader
	pools *workerpool.Manager

	cutTimeout time.Duration
	logger     zerolog.Logger
}

type Option func(*Runner)

func WithCutTimeout(d time.Duration) Option {
	return func(r *Runner) { r.cutTimeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func New(trim ports.VideoTrimmer, store ports.ObjectUploader, pools *workerpool.Manager, opts ...Option) *Runner {
	r := &Runner{
		trim:       trim,
		store:      store,
		pools:      pools,
		cutTimeout: DefaultCutTimeout,
		logger:     log.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timings records the wall-clock duration of each stage.
type Timings struct {
	Cut    time.Duration
	Upload time.Duration
}

// Run cuts every segment, uploads the successful cuts, and returns clips
// for segments that survived both stages, sorted by index. Per-segment
// failures are logged and dropped; they never fail the run. The scratch
// area holding intermediate files is removed on every exit path.
func (r *Runner) Run(ctx context.Context, videoPath string, segments []types.Segment, namePrefix string) ([]types.Clip, Timings, error) {
	var tm Timings
	if len(segments) == 0 {
		return nil, tm, ErrNoSegments
	}

	scratch, err := os.MkdirTemp("", "shotcut-")
	if err != nil {
		return nil, tm, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	r.logger.Info().
		Int("segments", len(segments)).
		Int("cpu_workers", r.pools.CPU().Size()).
		Int("io_workers", r.pools.IO().Size()).
		Msg("cutting segments")

	start := time.Now()
	cuts := r.cutAll(ctx, videoPath, segments, scratch)
	tm.Cut = time.Since(start)

	var succeeded []types.CutResult
	for _, c := range cuts {
		if c.OK() {
			succeeded = append(succeeded, c)
		}
	}
	r.logger.Info().
		Int("ok", len(succeeded)).
		Int("total", len(segments)).
		Dur("elapsed", tm.Cut).
		Msg("cut stage done")

	start = time.Now()
	uploads := r.uploadAll(ctx, succeeded, namePrefix)
	tm.Upload = time.Since(start)

	clips := collectClips(uploads)
	r.logger.Info().
		Int("ok", len(clips)).
		Int("total", len(succeeded)).
		Dur("elapsed", tm.Upload).
		Msg("upload stage done")

	return clips, tm, nil
}

// cutAll fans segments out to the CPU pool and collects results in
// completion order. Every segment is attempted; a failed cut never blocks
// or cancels its siblings.
func (r *Runner) cutAll(ctx context.Context, videoPath string, segments []types.Segment, scratch string) []types.CutResult {
	results := make(chan types.CutResult, len(segments))
	for i, seg := range segments {
		index := i + 1
		seg := seg
		dst := filepath.Join(scratch, fmt.Sprintf("segment_%d.mp4", index))
		r.pools.CPU().Submit(func() {
			results <- r.cutOne(ctx, videoPath, seg, index, dst)
		})
	}

	out := make([]types.CutResult, 0, len(segments))
	for range segments {
		res := <-results
		if res.OK() {
			r.logger.Debug().Int("index", res.Index).
				Float64("start", res.Start).Float64("end", res.End).
				Msg("segment cut")
		} else {
			r.logger.Warn().Int("index", res.Index).Err(res.Err).Msg("segment cut failed")
		}
		out = append(out, res)
	}
	return out
}

func (r *Runner) cutOne(ctx context.Context, src string, seg types.Segment, index int, dst string) types.CutResult {
	res := types.CutResult{Index: index, Start: seg.Start, End: seg.End}

	cctx, cancel := context.WithTimeout(ctx, r.cutTimeout)
	defer cancel()

	if err := r.trim.Trim(cctx, src, seg.Start, seg.End, dst); err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			res.Err = fmt.Errorf("trim timed out after %s", r.cutTimeout)
		} else {
			res.Err = err
		}
		return res
	}

	// The tool reporting success is not enough: the output must exist and
	// be non-empty.
	fi, err := os.Stat(dst)
	switch {
	case err != nil:
		res.Err = fmt.Errorf("cut output missing: %w", err)
	case fi.Size() == 0:
		res.Err = errors.New("cut output is empty")
	default:
		res.Path = dst
	}
	return res
}

// uploadAll fans successful cuts out to the IO pool. Task ids keep the
// original segment index: "<prefix>-<index>", 1-based.
func (r *Runner) uploadAll(ctx context.Context, cuts []types.CutResult, namePrefix string) []types.UploadResult {
	results := make(chan types.UploadResult, len(cuts))
	for _, cut := range cuts {
		cut := cut
		r.pools.IO().Submit(func() {
			results <- r.uploadOne(ctx, cut, namePrefix)
		})
	}

	out := make([]types.UploadResult, 0, len(cuts))
	for range cuts {
		res := <-results
		if res.OK() {
			r.logger.Debug().Int("index", res.Index).Str("task_id", res.TaskID).Msg("segment uploaded")
		} else {
			r.logger.Warn().Int("index", res.Index).Err(res.Err).Msg("segment upload failed")
		}
		out = append(out, res)
	}
	return out
}

func (r *Runner) uploadOne(ctx context.Context, cut types.CutResult, namePrefix string) types.UploadResult {
	taskID := fmt.Sprintf("%s-%d", namePrefix, cut.Index)
	res := types.UploadResult{
		Index:    cut.Index,
		Start:    round1(cut.Start),
		End:      round1(cut.End),
		Duration: round1(cut.End - cut.Start),
		TaskID:   taskID,
	}

	url, err := r.store.Upload(ctx, cut.Path, taskID)
	if err != nil {
		res.Err = err
		return res
	}
	res.URL = url
	return res
}

// collectClips filters successful uploads and sorts them by segment index.
// Fan-in yields completion order; index order is the caller contract.
func collectClips(uploads []types.UploadResult) []types.Clip {
	clips := make([]types.Clip, 0, len(uploads))
	for _, u := range uploads {
		if !u.OK() {
			continue
		}
		clips = append(clips, types.Clip{
			Index:    u.Index,
			Start:    u.Start,
			End:      u.End,
			Duration: u.Duration,
			TaskID:   u.TaskID,
			URL:      u.URL,
		})
	}
	sort.Slice(clips, func(i, j int) bool { return clips[i].Index < clips[j].Index })
	return clips
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
