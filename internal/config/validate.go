package config

import (
	"errors"
	"fmt"
	"math"
)

// maxGain bounds both mix gains. ffmpeg accepts larger values but anything
// beyond this clips narration badly.
const maxGain = 5.0

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScenes(); err != nil {
		return err
	}
	if err := c.validateTrim(); err != nil {
		return err
	}
	if err := c.validateMix(); err != nil {
		return err
	}
	if err := c.validateEncode(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScenes() error {
	switch c.Scenes.Backend {
	case SceneBackendSceneDetect, SceneBackendFFmpeg:
	default:
		return fmt.Errorf("scenes.backend must be %q or %q, got %q", SceneBackendSceneDetect, SceneBackendFFmpeg, c.Scenes.Backend)
	}
	if !isFinite(c.Scenes.Threshold) || c.Scenes.Threshold <= 0 {
		return errors.New("scenes.threshold must be positive")
	}
	if c.Scenes.MinSceneLen < 0 {
		return errors.New("scenes.min_scene_len must be >= 0")
	}
	if !isFinite(c.Scenes.FFmpegScore) || c.Scenes.FFmpegScore <= 0 || c.Scenes.FFmpegScore >= 1 {
		return errors.New("scenes.ffmpeg_score must be between 0 and 1 (exclusive)")
	}
	return nil
}

func (c *Config) validateTrim() error {
	switch c.Trim.Mode {
	case TrimModeCopy, TrimModeReencode:
		return nil
	default:
		return fmt.Errorf("trim.mode must be %q or %q, got %q", TrimModeCopy, TrimModeReencode, c.Trim.Mode)
	}
}

func (c *Config) validateMix() error {
	if !isFinite(c.Mix.VideoVolume) || c.Mix.VideoVolume < 0 || c.Mix.VideoVolume > maxGain {
		return fmt.Errorf("mix.video_volume must be between 0 and %g", maxGain)
	}
	if !isFinite(c.Mix.AudioVolume) || c.Mix.AudioVolume < 0 || c.Mix.AudioVolume > maxGain {
		return fmt.Errorf("mix.audio_volume must be between 0 and %g", maxGain)
	}
	return nil
}

func (c *Config) validateEncode() error {
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return errors.New("encode.crf must be between 0 and 51")
	}
	if c.Encode.Channels > 8 {
		return errors.New("encode.channels must be between 1 and 8")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
