package types

// Shot is a detected, visually continuous unit of video. Shots come from a
// detector ordered by StartTime, non-overlapping, covering the whole video.
type Shot struct {
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Duration   float64 `json:"duration"`
}

// Segment is an output time interval built from one or more shots.
// Consecutive segments produced by one segmentation run share exact
// boundaries (no gap, no overlap).
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (s Segment) Duration() float64 { return s.End - s.Start }

// CutResult is the outcome of trimming one segment. Path points into the
// run's scratch area and is only valid while the run is in flight.
// A failed cut carries Err and an empty Path.
type CutResult struct {
	Index int
	Path  string
	Start float64
	End   float64
	Err   error
}

func (r CutResult) OK() bool { return r.Err == nil }

// UploadResult is the outcome of uploading one successfully cut segment.
type UploadResult struct {
	Index    int
	Start    float64
	End      float64
	Duration float64
	TaskID   string
	URL      string
	Err      error
}

func (r UploadResult) OK() bool { return r.Err == nil }

// Clip is the caller-facing record for a segment that survived both stages.
type Clip struct {
	Index    int     `json:"index"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
	TaskID   string  `json:"task_id"`
	URL      string  `json:"url"`
}

// TimeStats holds per-phase wall-clock seconds for a full run.
type TimeStats struct {
	Download float64 `json:"download"`
	Detect   float64 `json:"detect"`
	Cut      float64 `json:"cut"`
	Upload   float64 `json:"upload"`
	Total    float64 `json:"total"`
}

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Report is the terminal summary of a run. Clips contains only segments
// whose cut and upload both succeeded, sorted by Index ascending.
type Report struct {
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	Input     string    `json:"input"`
	Clips     []Clip    `json:"clips"`
	Total     int       `json:"total"`
	TimeStats TimeStats `json:"time_stats"`
}
