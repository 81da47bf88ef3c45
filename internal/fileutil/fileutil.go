package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File is a complete payload destined for Path.
type File struct {
	Path string
	Data []byte
}

// Staged is a fully written temporary file waiting to be renamed onto its target.
type Staged struct {
	tmp    string
	target string
	done   bool
}

// Stage writes data to a temporary file next to path. Nothing is visible at
// path until Commit.
func Stage(path string, data []byte, mode os.FileMode) (*Staged, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	staged := &Staged{tmp: tmp.Name(), target: path}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		staged.Discard()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		staged.Discard()
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(staged.tmp, mode); err != nil {
		staged.Discard()
		return nil, fmt.Errorf("chmod temp file: %w", err)
	}
	return staged, nil
}

// Commit renames the staged file into place.
func (s *Staged) Commit() error {
	if s.done {
		return errors.New("staged file already finished")
	}
	if err := os.Rename(s.tmp, s.target); err != nil {
		s.Discard()
		return fmt.Errorf("rename into place: %w", err)
	}
	s.done = true
	return nil
}

// Discard removes the temporary file. It is a no-op after Commit.
func (s *Staged) Discard() {
	if s.done {
		return
	}
	s.done = true
	_ = os.Remove(s.tmp)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers observe either the previous content or the complete
// new content.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	staged, err := Stage(path, data, mode)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// WriteFilesAtomic stages every file before renaming any of them, then renames
// them in order. A failed stage leaves every target untouched; a failed rename
// leaves the later targets untouched.
func WriteFilesAtomic(files []File, mode os.FileMode) error {
	staged := make([]*Staged, 0, len(files))
	defer func() {
		for _, s := range staged {
			s.Discard()
		}
	}()
	for _, f := range files {
		s, err := Stage(f.Path, f.Data, mode)
		if err != nil {
			return fmt.Errorf("stage %s: %w", f.Path, err)
		}
		staged = append(staged, s)
	}
	for i, s := range staged {
		if err := s.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", files[i].Path, err)
		}
	}
	return nil
}
