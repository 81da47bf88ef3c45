// Package segmentio persists segment lists.
//
// Writes happen only after a complete segmentation pass and go through a
// temporary file plus rename, so a failed run never leaves a truncated
// `{video_id}_segments.json` behind. A per-video file lock keeps two runs for
// the same video from interleaving their writes.
package segmentio
