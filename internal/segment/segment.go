package segment

import "fmt"

// Segment is one subtitle-stable interval of a video.
type Segment struct {
	VideoID             string `json:"video_id"`
	SegmentID           int    `json:"segment_id"`
	StartTime           int    `json:"start_time"`
	EndTime             int    `json:"end_time"`
	StartFrame          int    `json:"start_frame"`
	EndFrame            int    `json:"end_frame"`
	FrameCount          int    `json:"frame_count"`
	RepresentativeFrame string `json:"representative_frame"`
}

// Duration is the inclusive time span in seconds. With missing frames it can
// exceed FrameCount.
func (s Segment) Duration() int {
	return s.EndTime - s.StartTime + 1
}

// FormatClock renders whole seconds as HH:MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// TotalDuration sums Duration over segs.
func TotalDuration(segs []Segment) int {
	total := 0
	for _, seg := range segs {
		total += seg.Duration()
	}
	return total
}

// FilterMinDuration returns the segments lasting at least minDuration seconds.
// Segment ids are left untouched.
func FilterMinDuration(segs []Segment, minDuration int) []Segment {
	kept := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if seg.Duration() >= minDuration {
			kept = append(kept, seg)
		}
	}
	return kept
}
