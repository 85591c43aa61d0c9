package ports

import (
	"context"

	"github.com/clipforge/shotcut/internal/types"
)

// ShotDetector produces an ordered, non-overlapping shot list that covers
// the whole video. Detector failure is a run-level failure.
type ShotDetector interface {
	DetectShots(ctx context.Context, videoPath string) ([]types.Shot, error)
}

// VideoTrimmer cuts [start, end) seconds out of src into dst.
type VideoTrimmer interface {
	Trim(ctx context.Context, src string, start, end float64, dst string) error
}

// ObjectUploader stores a local file under taskID and returns its remote URL.
type ObjectUploader interface {
	Upload(ctx context.Context, localPath, taskID string) (string, error)
}

// VideoFetcher resolves an input reference to a local file path. temp is
// true when the file was downloaded and should be removed by the caller.
type VideoFetcher interface {
	Resolve(ctx context.Context, src string) (localPath string, temp bool, err error)
}
