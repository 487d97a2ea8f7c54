package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Report is the subset of `ffprobe -of json` output the pipeline reads.
type Report struct {
	Streams []Stream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Stream is one elementary stream.
type Stream struct {
	CodecType    string `json:"codec_type"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
}

func (s Stream) is(kind string) bool { return strings.EqualFold(s.CodecType, kind) }

// Count returns how many streams of kind ("video", "audio") are present.
func (r Report) Count(kind string) int {
	n := 0
	for _, s := range r.Streams {
		if s.is(kind) {
			n++
		}
	}
	return n
}

// Seconds parses the container duration. Missing, non-numeric, and
// non-positive values are errors.
func (r Report) Seconds() (float64, error) {
	raw := strings.TrimSpace(r.Format.Duration)
	if raw == "" {
		return 0, errors.New("no duration reported")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("unusable duration %q", raw)
	}
	return v, nil
}

// FPS is the first video stream's average rate, then its r_frame_rate. Zero
// means unknown.
func (r Report) FPS() float64 {
	for _, s := range r.Streams {
		if !s.is("video") {
			continue
		}
		if fps := ratio(s.AvgFrameRate); fps > 0 {
			return fps
		}
		return ratio(s.RFrameRate)
	}
	return 0
}

// ratio reads "30000/1001" or a bare number, returning 0 when unusable.
func ratio(raw string) float64 {
	num, den, fraction := strings.Cut(strings.TrimSpace(raw), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil || n <= 0 {
		return 0
	}
	if !fraction {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / d
}

// Prober runs an ffprobe binary. It satisfies the probing interfaces of the
// pipeline and of the ffmpeg scene backend.
type Prober struct {
	binary string
}

// NewProber uses binary, or "ffprobe" from PATH when blank.
func NewProber(binary string) *Prober {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary}
}

// Probe runs ffprobe against path and decodes its report.
func (p *Prober) Probe(ctx context.Context, path string) (Report, error) {
	if _, err := os.Stat(path); err != nil {
		return Report{}, fmt.Errorf("ffprobe: %w", err)
	}
	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams", "-of", "json",
		"--", path)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return Report{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, msg)
			}
		}
		return Report{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var report Report
	if err := json.Unmarshal(out, &report); err != nil {
		return Report{}, fmt.Errorf("ffprobe %s: decode output: %w", path, err)
	}
	return report, nil
}

// Duration returns the container duration of path in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	report, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	seconds, err := report.Seconds()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return seconds, nil
}

// HasAudio reports whether path carries at least one audio stream.
func (p *Prober) HasAudio(ctx context.Context, path string) (bool, error) {
	report, err := p.Probe(ctx, path)
	if err != nil {
		return false, err
	}
	return report.Count("audio") > 0, nil
}

// FrameRate returns the video frame rate of path, or 0 when unknown.
func (p *Prober) FrameRate(ctx context.Context, path string) (float64, error) {
	report, err := p.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return report.FPS(), nil
}
