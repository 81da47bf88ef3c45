// Package pipeline runs one segmentation end to end: lock the video's
// outputs, segment its frames, persist the JSON and optional sidecars, then
// record the outcome in run history and metrics.
//
// Failures are recorded too, so `subseg history` shows why a video produced
// nothing. Batch fans Run out over a bounded worker pool; one video's failure
// never stops the others.
package pipeline
