package config

import "runtime"

const (
	defaultConfigPath         = "~/.config/subseg/config.toml"
	defaultFramesDir          = "step1-output/subtitle_frames_for_ocr"
	defaultOutputDir          = "step2-output/segments"
	defaultStateDir           = "~/.local/share/subseg"
	defaultDiffThreshold      = 15.0
	defaultBlankThreshold     = 30.0
	defaultMinSegmentDuration = 1
	defaultMaxWorkers         = 4
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			FramesDir: defaultFramesDir,
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Segmentation: Segmentation{
			DiffThreshold:      defaultDiffThreshold,
			BlankThreshold:     defaultBlankThreshold,
			MinSegmentDuration: defaultMinSegmentDuration,
			Workers:            defaultWorkers(),
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultWorkers() int {
	return min(runtime.NumCPU(), defaultMaxWorkers)
}
