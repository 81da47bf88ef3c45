package export

import (
	"bytes"
	"fmt"
	"path/filepath"

	"subseg/internal/fileutil"
	"subseg/internal/segment"
)

// TemplateFileName returns the SRT template name for videoID.
func TemplateFileName(videoID string) string {
	return videoID + "_template.srt"
}

// RenderSRT produces one cue per segment. A cue spans start_time up to the
// second after end_time, and its text is the representative frame so the OCR
// step only has to replace the text lines.
func RenderSRT(segs []segment.Segment) []byte {
	var buf bytes.Buffer
	for i, seg := range segs {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "%d\n%s --> %s\n%s\n",
			i+1,
			formatSRTTimestamp(seg.StartTime),
			formatSRTTimestamp(seg.EndTime+1),
			seg.RepresentativeFrame,
		)
	}
	return buf.Bytes()
}

// SRTFile renders the SRT template for videoID at its place in dir.
func SRTFile(dir, videoID string, segs []segment.Segment) fileutil.File {
	return fileutil.File{Path: filepath.Join(dir, TemplateFileName(videoID)), Data: RenderSRT(segs)}
}

func formatSRTTimestamp(seconds int) string {
	return segment.FormatClock(seconds) + ",000"
}
