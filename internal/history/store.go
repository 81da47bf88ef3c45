package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultLimit caps List when the filter names no limit.
const DefaultLimit = 20

const runColumns = `id, run_id, video_id, status, started_at, finished_at,
    diff_threshold, blank_threshold, min_segment_duration,
    frames, blank_frames, segments_raw, segments, subtitle_seconds,
    output_path, error_message`

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Batch runs record concurrently; one connection serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run and returns it with its row id populated.
func (s *Store) Record(ctx context.Context, run Run) (*Run, error) {
	if strings.TrimSpace(run.RunID) == "" {
		return nil, errors.New("run id is required")
	}
	if strings.TrimSpace(run.VideoID) == "" {
		return nil, errors.New("video id is required")
	}
	if run.Status == "" {
		run.Status = StatusSucceeded
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	run.StartedAt = run.StartedAt.UTC()
	run.FinishedAt = run.FinishedAt.UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            run_id, video_id, status, started_at, finished_at,
            diff_threshold, blank_threshold, min_segment_duration,
            frames, blank_frames, segments_raw, segments, subtitle_seconds,
            output_path, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.VideoID,
		string(run.Status),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.DiffThreshold,
		run.BlankThreshold,
		run.MinSegmentDuration,
		run.Frames,
		run.BlankFrames,
		run.SegmentsRaw,
		run.Segments,
		run.SubtitleSeconds,
		nullableString(run.OutputPath),
		nullableString(run.ErrorMessage),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return &run, nil
}

// List returns recorded runs, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	args := []any{}
	if videoID := strings.TrimSpace(filter.VideoID); videoID != "" {
		query += ` WHERE video_id = ?`
		args = append(args, videoID)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Latest returns the most recent run for videoID, or nil if none exists.
func (s *Store) Latest(ctx context.Context, videoID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE video_id = ? ORDER BY started_at DESC, id DESC LIMIT 1`,
		videoID,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		status     string
		startedAt  string
		finishedAt string
		outputPath sql.NullString
		errMessage sql.NullString
	)
	if err := row.Scan(
		&run.ID, &run.RunID, &run.VideoID, &status, &startedAt, &finishedAt,
		&run.DiffThreshold, &run.BlankThreshold, &run.MinSegmentDuration,
		&run.Frames, &run.BlankFrames, &run.SegmentsRaw, &run.Segments, &run.SubtitleSeconds,
		&outputPath, &errMessage,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Status = Status(status)
	run.StartedAt = parseTime(startedAt)
	run.FinishedAt = parseTime(finishedAt)
	run.OutputPath = outputPath.String
	run.ErrorMessage = errMessage.String
	return &run, nil
}

// timeLayout keeps every stored timestamp the same width so text order matches
// time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
