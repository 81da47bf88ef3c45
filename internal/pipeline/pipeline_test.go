package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subseg/internal/config"
	"subseg/internal/history"
	"subseg/internal/logging"
	"subseg/internal/metrics"
	"subseg/internal/pipeline"
	"subseg/internal/runctx"
	"subseg/internal/segmentio"
	"subseg/internal/testsupport"
)

// writeScenario lays out frames 1-5 identical, 6 blank, 7 identical again.
func writeScenario(t *testing.T, cfg *config.Config, videoID string) {
	t.Helper()
	for n := 1; n <= 7; n++ {
		img := testsupport.StripedImage(false)
		if n == 6 {
			testsupport.WriteFrame(t, cfg.Paths.FramesDir, videoID, n, testsupport.UniformImage(40))
			continue
		}
		testsupport.WriteFrame(t, cfg.Paths.FramesDir, videoID, n, img)
	}
}

func newRunner(t *testing.T, cfg *config.Config) (*pipeline.Runner, *history.Store, *metrics.Metrics) {
	t.Helper()
	store := testsupport.MustOpenHistory(t, cfg)
	m := metrics.New()
	return pipeline.New(pipeline.Options{Logger: logging.NewNop(), History: store, Metrics: m}), store, m
}

func TestRunWritesOutputsAndHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeScenario(t, cfg, "0-1")
	runner, store, _ := newRunner(t, cfg)

	req := pipeline.RequestFromConfig(cfg, "0-1")
	req.WriteSRT = true
	req.WriteTimestamps = true
	out, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out.RunID == "" {
		t.Fatal("expected run id")
	}
	if out.OutputPath != filepath.Join(cfg.Paths.OutputDir, "0-1_segments.json") {
		t.Fatalf("unexpected output path %q", out.OutputPath)
	}

	segs, err := segmentio.Read(out.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(segs) != 2 || segs[0].EndTime != 4 || segs[1].StartTime != 6 {
		t.Fatalf("unexpected segments %+v", segs)
	}
	for _, path := range []string{out.SRTPath, out.TimestampsPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected sidecar %q: %v", path, err)
		}
	}
	again, err := segmentio.AcquireLock(cfg.Paths.OutputDir, "0-1")
	if err != nil {
		t.Fatalf("expected output lock to be released: %v", err)
	}
	_ = again.Release()

	run, err := store.Latest(context.Background(), "0-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if run == nil || run.RunID != out.RunID || run.Status != history.StatusSucceeded {
		t.Fatalf("unexpected history row %+v", run)
	}
	if run.Frames != 7 || run.BlankFrames != 1 || run.Segments != 2 || run.SubtitleSeconds != 6 {
		t.Fatalf("unexpected history counts %+v", run)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeScenario(t, cfg, "0-1")
	runner, _, _ := newRunner(t, cfg)

	first, err := runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, "0-1"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	a, _ := os.ReadFile(first.OutputPath)
	second, err := runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, "0-1"))
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	b, _ := os.ReadFile(second.OutputPath)
	if !bytes.Equal(a, b) {
		t.Fatal("expected byte-identical output across runs")
	}
	if first.RunID == second.RunID {
		t.Fatal("expected distinct run ids")
	}
}

func TestRunMissingFramesRecordsFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFrame(t, cfg.Paths.FramesDir, "0-2", 1, testsupport.StripedImage(false))
	runner, store, _ := newRunner(t, cfg)

	_, err := runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, "0-1"))
	if !errors.Is(err, runctx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if runctx.ExitCode(err) != runctx.ExitNotFound {
		t.Fatalf("unexpected exit code %d", runctx.ExitCode(err))
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Paths.OutputDir, "0-1_segments.json")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output file, stat err=%v", statErr)
	}

	run, err := store.Latest(context.Background(), "0-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if run == nil || run.Status != history.StatusFailed || !strings.Contains(run.ErrorMessage, "no frames found") {
		t.Fatalf("expected failed history row, got %+v", run)
	}
}

func TestRunCorruptFrameLeavesPreviousOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeScenario(t, cfg, "0-1")
	runner, _, _ := newRunner(t, cfg)

	out, err := runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, "0-1"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	before, _ := os.ReadFile(out.OutputPath)

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.FramesDir, testsupport.FrameName("0-1", 8)), []byte("garbage"))
	_, err = runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, "0-1"))
	if !errors.Is(err, runctx.ErrFrameLoad) {
		t.Fatalf("expected ErrFrameLoad, got %v", err)
	}
	after, _ := os.ReadFile(out.OutputPath)
	if !bytes.Equal(before, after) {
		t.Fatal("failed run must not touch the previous output")
	}
}

func TestRunSidecarFailureLeavesNoSegmentsFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeScenario(t, cfg, "0-1")
	runner, store, _ := newRunner(t, cfg)

	blocked := filepath.Join(cfg.Paths.OutputDir, "0-1_template.srt")
	testsupport.WriteFile(t, filepath.Join(blocked, "keep"), []byte("x"))

	req := pipeline.RequestFromConfig(cfg, "0-1")
	req.WriteSRT = true
	req.WriteTimestamps = true
	_, err := runner.Run(context.Background(), req)
	if !errors.Is(err, runctx.ErrOutput) {
		t.Fatalf("expected output error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.Paths.OutputDir, "0-1_segments.json")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no segments file after failed run, stat err=%v", statErr)
	}

	run, err := store.Latest(context.Background(), "0-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if run == nil || run.Status != history.StatusFailed || run.OutputPath != "" {
		t.Fatalf("expected failed history row without output path, got %+v", run)
	}
}

func TestRunRejectsInvalidThresholds(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	runner := pipeline.New(pipeline.Options{})
	req := pipeline.RequestFromConfig(cfg, "0-1")
	req.Options.DiffThreshold = 400

	_, err := runner.Run(context.Background(), req)
	if runctx.ExitCode(err) != runctx.ExitConfiguration {
		t.Fatalf("expected configuration exit code, got %d (%v)", runctx.ExitCode(err), err)
	}
}

func TestRunFailsWhenOutputLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	writeScenario(t, cfg, "0-1")
	runner, _, _ := newRunner(t, cfg)

	lock, err := segmentio.AcquireLock(cfg.Paths.OutputDir, "0-1")
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	defer lock.Release()

	_, err = runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, "0-1"))
	if !errors.Is(err, segmentio.ErrLocked) || !errors.Is(err, runctx.ErrOutput) {
		t.Fatalf("expected locked output error, got %v", err)
	}
}

func TestRunBatchContinuesPastFailures(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMetricsTextfile())
	writeScenario(t, cfg, "0-1")
	writeScenario(t, cfg, "0-3")
	runner, store, m := newRunner(t, cfg)

	reqs := []pipeline.Request{
		pipeline.RequestFromConfig(cfg, "0-1"),
		pipeline.RequestFromConfig(cfg, "0-2"),
		pipeline.RequestFromConfig(cfg, "0-3"),
	}
	results := runner.RunBatch(context.Background(), reqs, 2)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if pipeline.Failed(results) != 1 {
		t.Fatalf("expected exactly one failure, got %+v", results)
	}
	if results[1].VideoID != "0-2" || results[1].Err == nil {
		t.Fatalf("expected 0-2 to fail in place, got %+v", results[1])
	}
	for _, i := range []int{0, 2} {
		if results[i].Err != nil || results[i].Outcome == nil {
			t.Fatalf("expected %s to succeed, got %v", results[i].VideoID, results[i].Err)
		}
	}

	runs, err := store.List(context.Background(), history.Filter{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(runs))
	}

	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	data, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `subseg_run_success{video_id="0-2"} 0`) {
		t.Fatalf("expected failure gauge in metrics:\n%s", data)
	}
}

func TestRunBatchCanceled(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	runner := pipeline.New(pipeline.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runner.RunBatch(ctx, []pipeline.Request{pipeline.RequestFromConfig(cfg, "0-1")}, 1)
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", results[0].Err)
	}
}

func TestRunRejectsPathLikeVideoIDs(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	runner := pipeline.New(pipeline.Options{})
	for _, id := range []string{"", "..", "../escape", `a\b`} {
		_, err := runner.Run(context.Background(), pipeline.RequestFromConfig(cfg, id))
		if runctx.ExitCode(err) != runctx.ExitConfiguration {
			t.Fatalf("expected %q to be rejected as configuration error, got %v", id, err)
		}
	}
}
