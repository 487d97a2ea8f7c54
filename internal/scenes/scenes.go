package scenes

import (
	"context"
	"fmt"
	"strings"

	"storyreel/internal/config"
)

// Scene is a contiguous shot in seconds from the start of the file.
type Scene struct {
	Start float64
	End   float64
}

// Duration returns the scene length in seconds.
func (s Scene) Duration() float64 {
	return s.End - s.Start
}

// Options tunes content-change detection.
type Options struct {
	// Threshold is the content-change sensitivity; larger values detect fewer cuts.
	Threshold float64
	// MinSceneLen is the shortest scene, in frames, that may be reported.
	MinSceneLen int
}

// Detector finds scene boundaries. A file without cuts yields an empty slice.
type Detector interface {
	Detect(ctx context.Context, path string, opts Options) ([]Scene, error)
}

// Probe supplies the media facts the ffmpeg backend needs.
type Probe interface {
	Duration(ctx context.Context, path string) (float64, error)
	FrameRate(ctx context.Context, path string) (float64, error)
}

// StderrRunner runs ffmpeg and returns what it wrote to stderr.
type StderrRunner interface {
	Output(ctx context.Context, args ...string) ([]byte, error)
}

// OptionsFromConfig extracts detection options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Threshold: cfg.Scenes.Threshold, MinSceneLen: cfg.Scenes.MinSceneLen}
}

// New returns the detector selected by scenes.backend.
func New(cfg *config.Config, runner StderrRunner, probe Probe) (Detector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Scenes.Backend)) {
	case "", config.SceneBackendSceneDetect:
		return NewSceneDetect(cfg.Tools.SceneDetect), nil
	case config.SceneBackendFFmpeg:
		return NewFFmpeg(runner, probe, cfg.Scenes.FFmpegScore), nil
	default:
		return nil, fmt.Errorf("unknown scene backend %q", cfg.Scenes.Backend)
	}
}
