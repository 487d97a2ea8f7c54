package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/config"
)

// ConfigOption adjusts a test config after its temp directories exist.
type ConfigOption func(*Env)

// Env is the temp tree behind a test config.
type Env struct {
	t   testing.TB
	Dir string
	Cfg *config.Config
}

// NewConfig returns defaults with state and log dirs under a fresh temp dir.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	env := &Env{t: t, Dir: t.TempDir(), Cfg: &cfg}
	cfg.Paths.StateDir = filepath.Join(env.Dir, "state")
	cfg.Paths.LogDir = filepath.Join(env.Dir, "logs")
	for _, opt := range opts {
		opt(env)
	}
	return env.Cfg
}

// WithSceneBackend selects the scene detection backend.
func WithSceneBackend(backend string) ConfigOption {
	return func(e *Env) { e.Cfg.Scenes.Backend = backend }
}

// WithToolScripts writes each script as an executable under <base>/bin and
// points the matching [tools] entry at it. Keys are "ffmpeg", "ffprobe", and
// "scenedetect"; other keys are written but not wired.
func WithToolScripts(scripts map[string]string) ConfigOption {
	return func(e *Env) {
		bin := filepath.Join(e.Dir, "bin")
		if err := os.MkdirAll(bin, 0o755); err != nil {
			e.t.Fatalf("mkdir bin dir: %v", err)
		}
		wired := map[string]*string{
			"ffmpeg":      &e.Cfg.Tools.FFmpeg,
			"ffprobe":     &e.Cfg.Tools.FFprobe,
			"scenedetect": &e.Cfg.Tools.SceneDetect,
		}
		for name, script := range scripts {
			target := filepath.Join(bin, name)
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				e.t.Fatalf("write stub %s: %v", name, err)
			}
			if field, ok := wired[name]; ok {
				*field = target
			}
		}
	}
}

// WithStubbedBinaries wires no-op stubs for every external tool. Enough for
// availability checks; use WithToolScripts when the tools must behave.
func WithStubbedBinaries() ConfigOption {
	return WithToolScripts(map[string]string{
		"ffmpeg":      NoopScript,
		"ffprobe":     NoopScript,
		"scenedetect": NoopScript,
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
