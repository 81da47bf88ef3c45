// Package metrics exposes per-video segmentation gauges in the Prometheus
// text format for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const labelVideoID = "video_id"

// RunSample is the per-video outcome recorded after a segmentation pass.
type RunSample struct {
	VideoID         string
	Frames          int
	BlankFrames     int
	SegmentsRaw     int
	Segments        int
	SubtitleSeconds int
	Elapsed         time.Duration
	Succeeded       bool
}

// Metrics holds the gauges for one CLI invocation.
type Metrics struct {
	registry        *prometheus.Registry
	frames          *prometheus.GaugeVec
	blankFrames     *prometheus.GaugeVec
	segmentsRaw     *prometheus.GaugeVec
	segments        *prometheus.GaugeVec
	subtitleSeconds *prometheus.GaugeVec
	runDuration     *prometheus.GaugeVec
	runSuccess      *prometheus.GaugeVec
}

func gauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{labelVideoID})
}

// New creates and registers the segmentation gauges on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry:        prometheus.NewRegistry(),
		frames:          gauge("subseg_frames", "Frames read in the last run"),
		blankFrames:     gauge("subseg_blank_frames", "Frames classified as blank in the last run"),
		segmentsRaw:     gauge("subseg_segments_raw", "Segments before duration filtering"),
		segments:        gauge("subseg_segments", "Segments written after duration filtering"),
		subtitleSeconds: gauge("subseg_subtitle_seconds", "Total seconds covered by written segments"),
		runDuration:     gauge("subseg_run_duration_seconds", "Wall time of the last run"),
		runSuccess:      gauge("subseg_run_success", "1 if the last run succeeded, 0 otherwise"),
	}
	m.registry.MustRegister(
		m.frames,
		m.blankFrames,
		m.segmentsRaw,
		m.segments,
		m.subtitleSeconds,
		m.runDuration,
		m.runSuccess,
	)
	return m
}

// Observe records one run. Counts from failed runs are left at zero.
func (m *Metrics) Observe(sample RunSample) {
	id := sample.VideoID
	m.runDuration.WithLabelValues(id).Set(sample.Elapsed.Seconds())
	if !sample.Succeeded {
		m.runSuccess.WithLabelValues(id).Set(0)
		return
	}
	m.runSuccess.WithLabelValues(id).Set(1)
	m.frames.WithLabelValues(id).Set(float64(sample.Frames))
	m.blankFrames.WithLabelValues(id).Set(float64(sample.BlankFrames))
	m.segmentsRaw.WithLabelValues(id).Set(float64(sample.SegmentsRaw))
	m.segments.WithLabelValues(id).Set(float64(sample.Segments))
	m.subtitleSeconds.WithLabelValues(id).Set(float64(sample.SubtitleSeconds))
}

// WriteTextfile atomically writes every gathered metric to path.
func (m *Metrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
