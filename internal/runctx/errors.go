package runctx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"subseg/internal/frames"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrFrameLoad     = errors.New("frame load error")
	ErrOutput        = errors.New("output error")
)

// Exit statuses reported by the CLI.
const (
	ExitFailure       = 1
	ExitConfiguration = 2
	ExitNotFound      = 3
	ExitFrameLoad     = 4
	ExitInterrupted   = 130
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		if err != nil {
			return fmt.Errorf("%s: %w", detail, err)
		}
		return errors.New(detail)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classify tags err with the marker matching its cause. Errors that already
// carry a marker are returned unchanged.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrFrameLoad), errors.Is(err, ErrOutput):
		return err
	case errors.Is(err, frames.ErrNoFramesFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, frames.ErrFrameLoad):
		return fmt.Errorf("%w: %w", ErrFrameLoad, err)
	default:
		return err
	}
}

// ExitCode maps a run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, ErrConfiguration):
		return ExitConfiguration
	case errors.Is(err, ErrNotFound), errors.Is(err, frames.ErrNoFramesFound):
		return ExitNotFound
	case errors.Is(err, ErrFrameLoad), errors.Is(err, frames.ErrFrameLoad):
		return ExitFrameLoad
	default:
		return ExitFailure
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}
