package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	videoDir   string
	audioDir   string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	// scenedetect writes no scene list, so every clip passes through whole.
	cfg := testsupport.NewConfig(t, testsupport.WithToolScripts(map[string]string{
		"ffmpeg":      testsupport.FFmpegScript,
		"ffprobe":     testsupport.FFprobeScript(2),
		"scenedetect": testsupport.NoopScript,
	}))
	base := testsupport.BaseDir(cfg)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "config.toml"),
		videoDir:   filepath.Join(base, "video"),
		audioDir:   filepath.Join(base, "audio"),
		outputDir:  filepath.Join(base, "out"),
	}
	for _, dir := range []string{env.videoDir, env.audioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[tools]\nffmpeg = %q\nffprobe = %q\nscenedetect = %q\n\n[logging]\nlevel = \"error\"\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		cfg.Tools.SceneDetect,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) addPair(t *testing.T, stem string) {
	t.Helper()
	testsupport.WritePair(t, e.videoDir, e.audioDir, stem)
}

func (e *cliTestEnv) runArgs(extra ...string) []string {
	args := []string{"run", "--video", e.videoDir, "--audio", e.audioDir, "--output", e.outputDir}
	return append(args, extra...)
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
