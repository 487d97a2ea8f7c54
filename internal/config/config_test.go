package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"storyreel/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "storyreel")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LedgerPath() != filepath.Join(wantState, "ledger.db") {
		t.Fatalf("unexpected ledger path: %q", cfg.LedgerPath())
	}
	if cfg.Scenes.Threshold != 27.0 {
		t.Fatalf("unexpected threshold: %v", cfg.Scenes.Threshold)
	}
	if cfg.Scenes.MinSceneLen != 15 {
		t.Fatalf("unexpected min scene len: %d", cfg.Scenes.MinSceneLen)
	}
	if cfg.Mix.VideoVolume != 0.05 || cfg.Mix.AudioVolume != 4.0 {
		t.Fatalf("unexpected mix gains: %+v", cfg.Mix)
	}
	if cfg.Trim.Mode != config.TrimModeCopy {
		t.Fatalf("expected copy trim mode by default, got %q", cfg.Trim.Mode)
	}
	if !cfg.Run.Cleanup {
		t.Fatal("expected cleanup enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "storyreel.toml")

	type payload struct {
		Scenes struct {
			Backend   string  `toml:"backend"`
			Threshold float64 `toml:"threshold"`
		} `toml:"scenes"`
		Trim struct {
			Mode string `toml:"mode"`
		} `toml:"trim"`
		Mix struct {
			VideoVolume float64 `toml:"video_volume"`
		} `toml:"mix"`
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Scenes.Backend = "FFmpeg"
	custom.Scenes.Threshold = 31.5
	custom.Trim.Mode = "re-encode"
	custom.Mix.VideoVolume = 0.2
	custom.Paths.StateDir = filepath.Join(tempDir, "state")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected to load %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Scenes.Backend != config.SceneBackendFFmpeg {
		t.Fatalf("expected backend normalized to ffmpeg, got %q", cfg.Scenes.Backend)
	}
	if cfg.Scenes.Threshold != 31.5 {
		t.Fatalf("unexpected threshold: %v", cfg.Scenes.Threshold)
	}
	if cfg.Trim.Mode != config.TrimModeReencode {
		t.Fatalf("expected reencode trim mode, got %q", cfg.Trim.Mode)
	}
	if cfg.Mix.VideoVolume != 0.2 {
		t.Fatalf("unexpected video volume: %v", cfg.Mix.VideoVolume)
	}
	if cfg.Mix.AudioVolume != 4.0 {
		t.Fatalf("expected default audio volume to survive partial config, got %v", cfg.Mix.AudioVolume)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "storyreel.toml")
	if err := os.WriteFile(configPath, []byte("[mix]\nvideo_gain = 1.0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestSampleConfigLoads(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	def := config.Default()
	if cfg.Scenes != def.Scenes || cfg.Mix != def.Mix || cfg.Encode != def.Encode {
		t.Fatalf("sample config drifted from defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"defaults", func(*config.Config) {}, ""},
		{"unknown backend", func(c *config.Config) { c.Scenes.Backend = "opencv" }, "scenes.backend"},
		{"zero threshold", func(c *config.Config) { c.Scenes.Threshold = 0 }, "scenes.threshold"},
		{"negative min scene len", func(c *config.Config) { c.Scenes.MinSceneLen = -1 }, "scenes.min_scene_len"},
		{"ffmpeg score out of range", func(c *config.Config) { c.Scenes.FFmpegScore = 1.5 }, "scenes.ffmpeg_score"},
		{"unknown trim mode", func(c *config.Config) { c.Trim.Mode = "smart" }, "trim.mode"},
		{"video volume too high", func(c *config.Config) { c.Mix.VideoVolume = 6 }, "mix.video_volume"},
		{"negative audio volume", func(c *config.Config) { c.Mix.AudioVolume = -1 }, "mix.audio_volume"},
		{"crf out of range", func(c *config.Config) { c.Encode.CRF = 60 }, "encode.crf"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadFallsBackToProjectFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	project := t.TempDir()
	t.Chdir(project)
	if err := os.WriteFile("storyreel.toml", []byte("[scenes]\nthreshold = 40.0\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || filepath.Base(resolved) != "storyreel.toml" {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Scenes.Threshold != 40 {
		t.Fatalf("threshold = %v, want 40", cfg.Scenes.Threshold)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := map[string]string{
		"":             "",
		"~":            home,
		"~/clips":      filepath.Join(home, "clips"),
		"/tmp/a/../b/": "/tmp/b",
	}
	for raw, want := range tests {
		got, err := config.ExpandPath(raw)
		if err != nil {
			t.Fatalf("ExpandPath(%q): %v", raw, err)
		}
		if got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", raw, got, want)
		}
	}
	rel, err := config.ExpandPath("out")
	if err != nil || !filepath.IsAbs(rel) {
		t.Fatalf("relative path not made absolute: %q, %v", rel, err)
	}
}
