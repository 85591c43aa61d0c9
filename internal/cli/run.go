package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/clipforge/shotcut/internal/domain/segmenter"
	"github.com/clipforge/shotcut/internal/log"
	"github.com/clipforge/shotcut/internal/pipeline"
	"github.com/clipforge/shotcut/internal/ports"
	"github.com/clipforge/shotcut/internal/ports/adapters/ffmpeg"
	"github.com/clipforge/shotcut/internal/ports/adapters/httpfetch"
	"github.com/clipforge/shotcut/internal/ports/adapters/objstore"
	"github.com/clipforge/shotcut/internal/types"
	"github.com/clipforge/shotcut/internal/usecase"
	"github.com/clipforge/shotcut/internal/workerpool"
)

const runTimeout = 3 * time.Hour

func runProcess(cmd *cobra.Command, input string) error {
	name, _ := cmd.Flags().GetString("name")
	maxDur, _ := cmd.Flags().GetFloat64("max")
	workers, _ := cmd.Flags().GetInt("workers")
	console, _ := cmd.Flags().GetBool("console")

	log.Configure(log.Config{Console: console})

	if name == "" {
		name = deriveName(input)
	}
	if workers <= 0 {
		workers = workerpool.DefaultSize()
	}

	// One pool pair for the whole process; every run in it shares these.
	pools := workerpool.NewManager(workers, workers)
	defer pools.Shutdown(10 * time.Second)

	video := newVideoTool(cmd)
	store, err := objstore.New(objstore.ConfigFromEnv())
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Deps{
		Fetch:  httpfetch.New(),
		Detect: video,
		Cutter: pipeline.New(video, store, pools),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	report, runErr := uc.Process(ctx, usecase.Input{
		Video:       input,
		Name:        name,
		MaxDuration: maxDur,
	})
	if err := printJSON(cmd, report); err != nil {
		return err
	}
	return runErr
}

func runSegment(cmd *cobra.Command, input string) error {
	maxDur, _ := cmd.Flags().GetFloat64("max")
	console, _ := cmd.Flags().GetBool("console")

	log.Configure(log.Config{Console: console})

	uc := usecase.New(usecase.Deps{
		Fetch:  httpfetch.New(),
		Detect: newVideoTool(cmd),
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	segments, stats, err := uc.SegmentOnly(ctx, usecase.Input{
		Video:       input,
		MaxDuration: maxDur,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, struct {
		Segments []types.Segment `json:"segments"`
		Stats    segmenter.Stats `json:"stats"`
	}{Segments: segments, Stats: stats})
}

func newVideoTool(cmd *cobra.Command) *ffmpeg.Adapter {
	threshold, _ := cmd.Flags().GetFloat64("scene-threshold")
	minShot, _ := cmd.Flags().GetFloat64("min-shot")
	return ffmpeg.New(
		os.Getenv("FFMPEG_PATH"),
		os.Getenv("FFPROBE_PATH"),
		ffmpeg.WithSceneThreshold(threshold),
		ffmpeg.WithMinShotLen(minShot),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(b))
	return nil
}

// deriveName turns the input file name into a safe task-id prefix.
func deriveName(input string) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizeNameSegment(name)
	if name == "" {
		name = "shotcut"
	}
	return name
}

func normalizeNameSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var _ ports.VideoTrimmer = (*ffmpeg.Adapter)(nil)
var _ ports.ShotDetector = (*ffmpeg.Adapter)(nil)
var _ ports.ObjectUploader = (*objstore.Adapter)(nil)
var _ ports.VideoFetcher = (*httpfetch.Fetcher)(nil)
