package frames

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// ErrNoFramesFound indicates that no file in the frames directory matched the
// naming convention for the requested video.
var ErrNoFramesFound = errors.New("no frames found")

// frameNamePattern matches any `{video_id}_{NNNN}.jpg` name and captures both parts.
var frameNamePattern = regexp.MustCompile(`^(.+)_(\d{4})\.jpg$`)

// Frame references a single frame image on disk.
type Frame struct {
	Number int
	Name   string
	Path   string
}

// Timestamp returns the frame's position in whole seconds. Frame 0001 is t=0.
func (f Frame) Timestamp() int {
	return f.Number - 1
}

// List returns the frames for videoID in dir, ordered by frame number.
func List(dir, videoID string) ([]Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("frames directory %q not found: %w", dir, err)
		}
		return nil, fmt.Errorf("read frames directory %q: %w", dir, err)
	}

	pattern, err := regexp.Compile(`^` + regexp.QuoteMeta(videoID) + `_(\d{4})\.jpg$`)
	if err != nil {
		return nil, fmt.Errorf("frame pattern for %q: %w", videoID, err)
	}

	var frames []Frame
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := pattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		frames = append(frames, Frame{
			Number: number,
			Name:   entry.Name(),
			Path:   filepath.Join(dir, entry.Name()),
		})
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w for video %q in %s", ErrNoFramesFound, videoID, dir)
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Number < frames[j].Number
	})
	return frames, nil
}

// DiscoverVideoIDs returns the distinct video identifiers that have at least
// one frame in dir, sorted lexically.
func DiscoverVideoIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory %q: %w", dir, err)
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := frameNamePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		if _, ok := seen[match[1]]; ok {
			continue
		}
		seen[match[1]] = struct{}{}
		ids = append(ids, match[1])
	}
	sort.Strings(ids)
	return ids, nil
}

// Dir is the on-disk frame set for one video.
type Dir struct {
	Path    string
	VideoID string
}

// NewDir returns a frame source rooted at path for videoID.
func NewDir(path, videoID string) Dir {
	return Dir{Path: path, VideoID: videoID}
}

// List resolves the ordered frame references for the video.
func (d Dir) List(ctx context.Context) ([]Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return List(d.Path, d.VideoID)
}

// Load decodes a single frame.
func (d Dir) Load(ctx context.Context, frame Frame) (*Pixels, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(frame.Path)
}
