package config

import (
	"fmt"
	"strings"
)

// Normalize expands paths, trims string values, and fills blank fields with
// defaults. Load calls it; callers that mutate a loaded config (for example
// CLI flag overrides) should call it again before Validate.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeScenes()
	c.normalizeTrim()
	c.normalizeEncode()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = stringOr(c.Tools.FFmpeg, defaultFFmpeg)
	c.Tools.FFprobe = stringOr(c.Tools.FFprobe, defaultFFprobe)
	c.Tools.SceneDetect = stringOr(c.Tools.SceneDetect, defaultSceneDetect)
}

func (c *Config) normalizeScenes() {
	c.Scenes.Backend = strings.ToLower(stringOr(c.Scenes.Backend, defaultSceneBackend))
}

func (c *Config) normalizeTrim() {
	c.Trim.Mode = strings.ToLower(stringOr(c.Trim.Mode, defaultTrimMode))
	if c.Trim.Mode == "re-encode" {
		c.Trim.Mode = TrimModeReencode
	}
}

func (c *Config) normalizeEncode() {
	c.Encode.VideoCodec = stringOr(c.Encode.VideoCodec, defaultVideoCodec)
	c.Encode.Preset = stringOr(c.Encode.Preset, defaultPreset)
	c.Encode.PixelFormat = stringOr(c.Encode.PixelFormat, defaultPixelFormat)
	c.Encode.AudioCodec = stringOr(c.Encode.AudioCodec, defaultAudioCodec)
	c.Encode.AudioBitrate = stringOr(c.Encode.AudioBitrate, defaultAudioBitrate)
	if c.Encode.SampleRate <= 0 {
		c.Encode.SampleRate = defaultSampleRate
	}
	if c.Encode.Channels <= 0 {
		c.Encode.Channels = defaultChannels
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func stringOr(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
