package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subseg/internal/config"
	"subseg/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	for _, key := range []string{"SUBSEG_FRAMES_DIR", "SUBSEG_OUTPUT_DIR", "SUBSEG_STATE_DIR", "SUBSEG_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cfg.Logging.Level = "error"

	configPath := filepath.Join(testsupport.BaseDir(cfg), "subseg.toml")
	writeTestConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// writeScenario lays out frames 1-5 identical, 6 blank, 7 identical again.
func writeScenario(t *testing.T, dir, videoID string) {
	t.Helper()
	for n := 1; n <= 7; n++ {
		if n == 6 {
			testsupport.WriteFrame(t, dir, videoID, n, testsupport.UniformImage(30))
			continue
		}
		testsupport.WriteFrame(t, dir, videoID, n, testsupport.StripedImage(false))
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
