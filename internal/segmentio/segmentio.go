package segmentio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"subseg/internal/fileutil"
	"subseg/internal/segment"
)

// ErrLocked indicates another process holds the output lock for the video.
var ErrLocked = errors.New("segments output is locked by another run")

// SegmentsFileName returns the canonical output file name for videoID.
func SegmentsFileName(videoID string) string {
	return videoID + "_segments.json"
}

// SegmentsPath returns the output file path for videoID inside dir.
func SegmentsPath(dir, videoID string) string {
	return filepath.Join(dir, SegmentsFileName(videoID))
}

// Encode renders segments as two-space indented JSON. An empty list encodes
// as [] and the output carries no trailing newline.
func Encode(segs []segment.Segment) ([]byte, error) {
	if segs == nil {
		segs = []segment.Segment{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(segs); err != nil {
		return nil, fmt.Errorf("encode segments: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Read loads a previously written segment list.
func Read(path string) ([]segment.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segments: %w", err)
	}
	var segs []segment.Segment
	if err := json.Unmarshal(data, &segs); err != nil {
		return nil, fmt.Errorf("decode segments %s: %w", path, err)
	}
	return segs, nil
}

// Lock is an exclusive, non-blocking lock on one video's outputs.
type Lock struct {
	lock *flock.Flock
}

// AcquireLock takes the output lock for videoID in dir. It fails fast with
// ErrLocked when another run holds it.
func AcquireLock(dir, videoID string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output directory: %w", err)
	}
	lock := flock.New(LockPath(dir, videoID))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, videoID)
	}
	return &Lock{lock: lock}, nil
}

// Release unlocks the output. The lock file stays on disk so every run
// contends on the same inode.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release output lock: %w", err)
	}
	return nil
}

// LockPath returns the lock file guarding videoID's outputs in dir.
func LockPath(dir, videoID string) string {
	return filepath.Join(dir, "."+videoID+".lock")
}

// Write encodes segs and atomically replaces the video's segments file along
// with any sidecars. Everything is staged before anything is renamed, and the
// segments file is renamed last, so a failed write never leaves a new segments
// file behind.
func Write(dir, videoID string, segs []segment.Segment, sidecars ...fileutil.File) (string, error) {
	data, err := Encode(segs)
	if err != nil {
		return "", err
	}
	path := SegmentsPath(dir, videoID)
	files := append(append([]fileutil.File{}, sidecars...), fileutil.File{Path: path, Data: data})
	if err := fileutil.WriteFilesAtomic(files, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
