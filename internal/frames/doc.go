// Package frames locates and decodes the still images that make up one
// video's subtitle frame sequence.
//
// Frames follow the `{video_id}_{NNNN}.jpg` naming convention produced by the
// extraction step (one frame per second, NNNN is the 1-based frame number).
// List resolves the ordered frame references for a video without touching
// pixel data; Load decodes a single frame on demand so callers only keep the
// frames they are actively comparing in memory.
package frames
