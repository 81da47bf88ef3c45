package export

import (
	"bytes"
	"fmt"
	"path/filepath"

	"subseg/internal/fileutil"
	"subseg/internal/frames"
	"subseg/internal/segment"
)

// TimestampsFileName returns the timestamp table name for videoID.
func TimestampsFileName(videoID string) string {
	return videoID + "_timestamps.tsv"
}

// RenderTimestamps lists every frame with its second offset and clock time.
func RenderTimestamps(refs []frames.Frame) []byte {
	var buf bytes.Buffer
	buf.WriteString("frame\tsecond\tsrt_timestamp\n")
	for _, ref := range refs {
		fmt.Fprintf(&buf, "_%04d\t%d\t%s\n", ref.Number, ref.Timestamp(), segment.FormatClock(ref.Timestamp()))
	}
	return buf.Bytes()
}

// TimestampsFile renders the timestamp table for videoID at its place in dir.
func TimestampsFile(dir, videoID string, refs []frames.Frame) fileutil.File {
	return fileutil.File{Path: filepath.Join(dir, TimestampsFileName(videoID)), Data: RenderTimestamps(refs)}
}
