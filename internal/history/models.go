package history

import "time"

// Status is the terminal state of a recorded run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded segmentation attempt.
type Run struct {
	ID                 int64     `json:"id"`
	RunID              string    `json:"run_id"`
	VideoID            string    `json:"video_id"`
	Status             Status    `json:"status"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
	DiffThreshold      float64   `json:"diff_threshold"`
	BlankThreshold     float64   `json:"blank_threshold"`
	MinSegmentDuration int       `json:"min_segment_duration"`
	Frames             int       `json:"frames"`
	BlankFrames        int       `json:"blank_frames"`
	SegmentsRaw        int       `json:"segments_raw"`
	Segments           int       `json:"segments"`
	SubtitleSeconds    int       `json:"subtitle_seconds"`
	OutputPath         string    `json:"output_path,omitempty"`
	ErrorMessage       string    `json:"error_message,omitempty"`
}

// Elapsed is the wall time the run took.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Filter narrows List results.
type Filter struct {
	VideoID string
	Limit   int
}
