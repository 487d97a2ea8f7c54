package ffmpeg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Profile is the encode profile applied to re-encoded output. Every aligned
// segment uses the same profile so the concat demuxer can stream-copy them.
type Profile struct {
	VideoCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	AudioCodec   string
	AudioBitrate string
	SampleRate   int
	Channels     int
}

// Args renders the profile as ffmpeg output options.
func (p Profile) Args() []string {
	args := []string{"-c:v", p.VideoCodec, "-preset", p.Preset, "-crf", strconv.Itoa(p.CRF)}
	if p.PixelFormat != "" {
		args = append(args, "-pix_fmt", p.PixelFormat)
	}
	args = append(args, "-c:a", p.AudioCodec, "-b:a", p.AudioBitrate)
	if p.Channels > 0 {
		args = append(args, "-ac", strconv.Itoa(p.Channels))
	}
	if p.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(p.SampleRate))
	}
	return args
}

// TrimCopyArgs cuts input at start without re-encoding. Stream copy can only
// begin on a keyframe, so the real cut lands on the nearest keyframe at or
// before start rather than exactly on it.
func TrimCopyArgs(input, output string, start float64) []string {
	return []string{"-i", input, "-ss", FormatSeconds(start), "-c", "copy", output}
}

// TrimReencodeArgs cuts input exactly at start by re-encoding with profile.
func TrimReencodeArgs(input, output string, start float64, profile Profile) []string {
	args := []string{"-ss", FormatSeconds(start), "-i", input}
	args = append(args, profile.Args()...)
	return append(args, output)
}

// ConcatArgs joins the files listed in manifest by stream copy.
func ConcatArgs(manifest, output string) []string {
	return []string{"-f", "concat", "-safe", "0", "-i", manifest, "-c", "copy", output}
}

// AlignSpec describes re-timing a clip to the length of its narration.
type AlignSpec struct {
	Video     string
	Narration string
	Output    string
	// PTSFactor multiplies video timestamps: >1 lengthens the clip, <1 shortens it.
	PTSFactor float64
	// HasOriginalAudio reports whether Video carries an audio stream to mix.
	HasOriginalAudio bool
	VideoVolume      float64
	AudioVolume      float64
	Profile          Profile
}

// AlignFilter builds the filter_complex graph for spec. The clip's own audio
// is tempo-shifted by 1/PTSFactor so it stays in sync with the re-timed
// video, attenuated, and mixed with the amplified narration; amix keeps the
// longest input so the shorter stream is padded rather than truncating.
func AlignFilter(spec AlignSpec) (string, error) {
	if !validFactor(spec.PTSFactor) {
		return "", fmt.Errorf("align filter: invalid pts factor %v", spec.PTSFactor)
	}
	video := "[0:v]setpts=PTS*" + formatFactor(spec.PTSFactor) + "[v_out]"
	narration := "[1:a]volume=" + formatFactor(spec.AudioVolume)
	if !spec.HasOriginalAudio {
		return video + ";" + narration + "[a_out]", nil
	}
	tempo, err := AtempoFilter(1 / spec.PTSFactor)
	if err != nil {
		return "", fmt.Errorf("align filter: %w", err)
	}
	parts := []string{
		video,
		"[0:a]" + tempo + ",volume=" + formatFactor(spec.VideoVolume) + "[a_orig]",
		narration + "[a_ext]",
		"[a_orig][a_ext]amix=inputs=2:duration=longest[a_out]",
	}
	return strings.Join(parts, ";"), nil
}

// AlignArgs builds the full ffmpeg argument list for spec.
func AlignArgs(spec AlignSpec) ([]string, error) {
	filter, err := AlignFilter(spec)
	if err != nil {
		return nil, err
	}
	args := []string{
		"-i", spec.Video,
		"-i", spec.Narration,
		"-filter_complex", filter,
		"-map", "[v_out]",
		"-map", "[a_out]",
	}
	args = append(args, spec.Profile.Args()...)
	return append(args, "-shortest", spec.Output), nil
}

const (
	atempoMin = 0.5
	atempoMax = 2.0
	// unityTolerance treats factors this close to 1 as no tempo change.
	unityTolerance = 0.001
)

// AtempoChain decomposes factor into a sequence of atempo stages, each within
// [0.5, 2.0], whose product equals factor.
func AtempoChain(factor float64) ([]float64, error) {
	if !validFactor(factor) {
		return nil, fmt.Errorf("atempo: invalid factor %v", factor)
	}
	if math.Abs(factor-1) < unityTolerance {
		return []float64{1}, nil
	}
	var stages []float64
	for factor > atempoMax {
		stages = append(stages, atempoMax)
		factor /= atempoMax
	}
	for factor < atempoMin {
		stages = append(stages, atempoMin)
		factor /= atempoMin
	}
	return append(stages, factor), nil
}

// AtempoFilter renders AtempoChain(factor) as a comma-joined filter chain.
func AtempoFilter(factor float64) (string, error) {
	stages, err := AtempoChain(factor)
	if err != nil {
		return "", err
	}
	if len(stages) == 1 && stages[0] == 1 {
		return "atempo=1.0", nil
	}
	parts := make([]string, len(stages))
	for i, stage := range stages {
		switch {
		case i < len(stages)-1 && stage == atempoMax:
			parts[i] = "atempo=2.0"
		case i < len(stages)-1 && stage == atempoMin:
			parts[i] = "atempo=0.5"
		default:
			parts[i] = "atempo=" + formatFactor(stage)
		}
	}
	return strings.Join(parts, ","), nil
}

// FormatSeconds renders a timestamp for -ss and similar options.
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

func formatFactor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validFactor(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
