package config

// Paths locates run state and logs. Input and output directories are per run
// and come from flags, not from here.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg      string `toml:"ffmpeg"`
	FFprobe     string `toml:"ffprobe"`
	SceneDetect string `toml:"scenedetect"`
}

// Scenes contains scene-boundary detection settings.
type Scenes struct {
	// Backend selects the detector: "scenedetect" (PySceneDetect CLI) or "ffmpeg".
	Backend string `toml:"backend"`
	// Threshold is the content detector sensitivity. Higher is less sensitive.
	Threshold float64 `toml:"threshold"`
	// MinSceneLen is the minimum scene length in frames; closer cuts are merged.
	MinSceneLen int `toml:"min_scene_len"`
	// FFmpegScore is the scene score (0-1) used by the ffmpeg backend.
	FFmpegScore float64 `toml:"ffmpeg_score"`
}

// Trim contains first-scene removal settings.
type Trim struct {
	// Mode is "copy" (stream copy, keyframe precision) or "reencode" (frame accurate).
	Mode  string `toml:"mode"`
	Force bool   `toml:"force"`
}

// Mix contains the audio gains applied while aligning clips with narration.
type Mix struct {
	VideoVolume float64 `toml:"video_volume"`
	AudioVolume float64 `toml:"audio_volume"`
}

// Encode is the profile every aligned segment is encoded with. Segments must
// share it so the final stream-copy concatenation stays valid.
type Encode struct {
	VideoCodec   string `toml:"video_codec"`
	Preset       string `toml:"preset"`
	CRF          int    `toml:"crf"`
	PixelFormat  string `toml:"pixel_format"`
	AudioCodec   string `toml:"audio_codec"`
	AudioBitrate string `toml:"audio_bitrate"`
	SampleRate   int    `toml:"sample_rate"`
	Channels     int    `toml:"channels"`
}

// Run holds toggles that the run command can override per invocation.
type Run struct {
	Cleanup bool `toml:"cleanup"`
}

// Logging selects the log format ("console" or "json") and level.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the decoded config.toml. Fields missing from the file keep
// their Default values.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Tools   Tools   `toml:"tools"`
	Scenes  Scenes  `toml:"scenes"`
	Trim    Trim    `toml:"trim"`
	Mix     Mix     `toml:"mix"`
	Encode  Encode  `toml:"encode"`
	Run     Run     `toml:"run"`
	Logging Logging `toml:"logging"`
}
