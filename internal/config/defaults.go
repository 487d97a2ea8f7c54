package config

const (
	defaultConfigPath   = "~/.config/storyreel/config.toml"
	defaultStateDir     = "~/.local/share/storyreel"
	defaultLogDir       = "~/.local/share/storyreel/logs"
	defaultFFmpeg       = "ffmpeg"
	defaultFFprobe      = "ffprobe"
	defaultSceneDetect  = "scenedetect"
	defaultSceneBackend = SceneBackendSceneDetect
	defaultThreshold    = 27.0
	defaultMinSceneLen  = 15
	defaultFFmpegScore  = 0.3
	defaultTrimMode     = TrimModeCopy
	defaultVideoVolume  = 0.05
	defaultAudioVolume  = 4.0
	defaultVideoCodec   = "libx264"
	defaultPreset       = "fast"
	defaultCRF          = 23
	defaultPixelFormat  = "yuv420p"
	defaultAudioCodec   = "aac"
	defaultAudioBitrate = "192k"
	defaultSampleRate   = 48000
	defaultChannels     = 2
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
)

// Scene detector backends.
const (
	SceneBackendSceneDetect = "scenedetect"
	SceneBackendFFmpeg      = "ffmpeg"
)

// Trim modes.
const (
	TrimModeCopy     = "copy"
	TrimModeReencode = "reencode"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:      defaultFFmpeg,
			FFprobe:     defaultFFprobe,
			SceneDetect: defaultSceneDetect,
		},
		Scenes: Scenes{
			Backend:     defaultSceneBackend,
			Threshold:   defaultThreshold,
			MinSceneLen: defaultMinSceneLen,
			FFmpegScore: defaultFFmpegScore,
		},
		Trim: Trim{
			Mode: defaultTrimMode,
		},
		Mix: Mix{
			VideoVolume: defaultVideoVolume,
			AudioVolume: defaultAudioVolume,
		},
		Encode: Encode{
			VideoCodec:   defaultVideoCodec,
			Preset:       defaultPreset,
			CRF:          defaultCRF,
			PixelFormat:  defaultPixelFormat,
			AudioCodec:   defaultAudioCodec,
			AudioBitrate: defaultAudioBitrate,
			SampleRate:   defaultSampleRate,
			Channels:     defaultChannels,
		},
		Run: Run{
			Cleanup: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
