package scenes

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	defaultScore = 0.3
	// fallbackFrameRate converts MinSceneLen when ffprobe reports no rate.
	fallbackFrameRate = 25.0
)

var ptsTimePattern = regexp.MustCompile(`pts_time:\s*([0-9]+(?:\.[0-9]+)?)`)

// FFmpeg detects cuts with ffmpeg's scene score and the showinfo filter.
type FFmpeg struct {
	runner StderrRunner
	probe  Probe
	score  float64
}

// NewFFmpeg constructs an ffmpeg-backed detector. score is the scene-change
// probability in (0,1) above which a frame starts a new scene.
func NewFFmpeg(runner StderrRunner, probe Probe, score float64) *FFmpeg {
	if score <= 0 || score >= 1 {
		score = defaultScore
	}
	return &FFmpeg{runner: runner, probe: probe, score: score}
}

// Detect reports scenes [0,c1], [c1,c2], ..., [cn,duration]. opts.Threshold
// is not used; the score passed to NewFFmpeg plays that role.
func (d *FFmpeg) Detect(ctx context.Context, path string, opts Options) ([]Scene, error) {
	duration, err := d.probe.Duration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scenes: %w", err)
	}
	fps, err := d.probe.FrameRate(ctx, path)
	if err != nil || fps <= 0 {
		fps = fallbackFrameRate
	}

	filter := fmt.Sprintf("select='gt(scene,%s)',showinfo", strconv.FormatFloat(d.score, 'f', -1, 64))
	stderr, err := d.runner.Output(ctx, "-hide_banner", "-nostats", "-i", path, "-an", "-vf", filter, "-f", "null", "-")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg scenes %s: %w", filepath.Base(path), err)
	}

	minGap := float64(opts.MinSceneLen) / fps
	cuts := MergeCuts(ParseShowinfo(stderr), minGap, duration)
	return BuildScenes(cuts, duration), nil
}

// ParseShowinfo extracts frame timestamps reported by showinfo.
func ParseShowinfo(stderr []byte) []float64 {
	var times []float64
	for _, line := range strings.Split(string(stderr), "\n") {
		if !strings.Contains(line, "showinfo") {
			continue
		}
		match := ptsTimePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			times = append(times, v)
		}
	}
	return times
}

// MergeCuts sorts cuts and drops any that would leave a scene shorter than
// minGap seconds, measured from the start of the file and from the last kept
// cut. Cuts at or beyond duration are dropped.
func MergeCuts(cuts []float64, minGap, duration float64) []float64 {
	sorted := append([]float64(nil), cuts...)
	sort.Float64s(sorted)
	var kept []float64
	prev := 0.0
	for _, cut := range sorted {
		if cut <= 0 || (duration > 0 && cut >= duration) {
			continue
		}
		if cut-prev < minGap {
			continue
		}
		kept = append(kept, cut)
		prev = cut
	}
	return kept
}

// BuildScenes turns cut points into consecutive scenes. No cuts yields nil.
func BuildScenes(cuts []float64, duration float64) []Scene {
	if len(cuts) == 0 {
		return nil
	}
	scenes := make([]Scene, 0, len(cuts)+1)
	start := 0.0
	for _, cut := range cuts {
		scenes = append(scenes, Scene{Start: start, End: cut})
		start = cut
	}
	return append(scenes, Scene{Start: start, End: duration})
}
