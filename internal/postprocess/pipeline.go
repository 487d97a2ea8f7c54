package postprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/scenes"
)

// Scratch layout under the output directory.
const (
	TrimmedDir = "trimmed"
	MergedDir  = "merged"
	FinalName  = "final_merged.mp4"
)

// Stage names used in outcomes and logs.
const (
	StageTrim   = "trim"
	StageAlign  = "align"
	StageConcat = "concat"
)

// Prober answers duration and audio-presence questions about media files.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
	HasAudio(ctx context.Context, path string) (bool, error)
}

// Transcoder runs one ffmpeg job to completion.
type Transcoder interface {
	Transcode(ctx context.Context, job ffmpeg.Job) error
}

// Tools bundles the external capabilities the pipeline drives.
type Tools struct {
	Prober     Prober
	Detector   scenes.Detector
	Transcoder Transcoder
}

// Options configures one pipeline run.
type Options struct {
	VideoDir  string
	AudioDir  string
	OutputDir string
	// FinalPath receives a copy of the merged video when set.
	FinalPath   string
	Scenes      scenes.Options
	TrimMode    string
	Force       bool
	VideoVolume float64
	AudioVolume float64
	Profile     ffmpeg.Profile
	Cleanup     bool
}

// OptionsFromConfig fills everything except the directories from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Scenes:      scenes.OptionsFromConfig(cfg),
		TrimMode:    cfg.Trim.Mode,
		Force:       cfg.Trim.Force,
		VideoVolume: cfg.Mix.VideoVolume,
		AudioVolume: cfg.Mix.AudioVolume,
		Profile:     ProfileFromConfig(cfg),
		Cleanup:     cfg.Run.Cleanup,
	}
}

// ProfileFromConfig maps the [encode] section onto an ffmpeg profile.
func ProfileFromConfig(cfg *config.Config) ffmpeg.Profile {
	return ffmpeg.Profile{
		VideoCodec:   cfg.Encode.VideoCodec,
		Preset:       cfg.Encode.Preset,
		CRF:          cfg.Encode.CRF,
		PixelFormat:  cfg.Encode.PixelFormat,
		AudioCodec:   cfg.Encode.AudioCodec,
		AudioBitrate: cfg.Encode.AudioBitrate,
		SampleRate:   cfg.Encode.SampleRate,
		Channels:     cfg.Encode.Channels,
	}
}

// Outcome statuses.
const (
	OutcomeOK          = "ok"
	OutcomeCached      = "cached"
	OutcomePassThrough = "passthrough"
	OutcomeSkipped     = "skipped"
	OutcomeFailed      = "failed"
)

// ItemOutcome records what happened to one clip or narration in a stage.
type ItemOutcome struct {
	Stage  string
	Name   string
	Status string
	Output string
	Note   string
	Err    error
}

// Detail returns the error text, or the note when the item did not fail.
func (o ItemOutcome) Detail() string {
	if o.Err != nil {
		return o.Err.Error()
	}
	return o.Note
}

// Succeeded reports whether the item produced usable output.
func (o ItemOutcome) Succeeded() bool {
	switch o.Status {
	case OutcomeOK, OutcomeCached, OutcomePassThrough:
		return true
	default:
		return false
	}
}

// Segment is one aligned clip ready for concatenation.
type Segment struct {
	Path      string
	Index     int
	Stem      string
	PTSFactor float64
}

// Result summarises a run. It is populated as far as the run got, even on
// failure.
type Result struct {
	FinalPath string
	Segments  []Segment
	Outcomes  []ItemOutcome
	Elapsed   time.Duration
}

// Failed returns the outcomes that did not succeed or were skipped.
func (r Result) Failed() []ItemOutcome {
	var out []ItemOutcome
	for _, o := range r.Outcomes {
		if o.Status == OutcomeFailed {
			out = append(out, o)
		}
	}
	return out
}

// Pipeline runs trim, align, and concat over one pair of input directories.
type Pipeline struct {
	opts     Options
	tools    Tools
	logger   *slog.Logger
	trimDir  string
	mergeDir string
}

// New validates opts and tools and returns a ready pipeline.
func New(opts Options, tools Tools, logger *slog.Logger) (*Pipeline, error) {
	if tools.Prober == nil || tools.Detector == nil || tools.Transcoder == nil {
		return nil, errors.New("pipeline: prober, detector, and transcoder are required")
	}
	for name, dir := range map[string]string{"video": opts.VideoDir, "audio": opts.AudioDir, "output": opts.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("pipeline: %s directory is required", name)
		}
	}
	if opts.TrimMode == "" {
		opts.TrimMode = config.TrimModeCopy
	}
	p := &Pipeline{
		opts:     opts,
		tools:    tools,
		logger:   logging.NewComponentLogger(logger, "postprocess"),
		trimDir:  filepath.Join(opts.OutputDir, TrimmedDir),
		mergeDir: filepath.Join(opts.OutputDir, MergedDir),
	}
	if final := strings.TrimSpace(opts.FinalPath); final != "" {
		// Cleanup removes these, so a final video inside them would be lost.
		for _, scratch := range []string{p.trimDir, p.mergeDir, filepath.Join(opts.OutputDir, ffmpeg.ManifestName)} {
			if samePath(final, scratch) || within(scratch, final) {
				return nil, fmt.Errorf("pipeline: final path %s is inside scratch path %s", final, scratch)
			}
		}
	}
	return p, nil
}

// Run executes the three stages in order. Per-item failures in trim and align
// are recorded in Result.Outcomes; the returned error is the run failure.
func (p *Pipeline) Run(ctx context.Context) (result Result, err error) {
	started := time.Now()
	defer func() { result.Elapsed = time.Since(started) }()
	logger := logging.WithContext(ctx, p.logger)

	for _, dir := range []string{p.trimDir, p.mergeDir} {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return result, fmt.Errorf("create scratch dir: %w", mkErr)
		}
	}
	if p.opts.Cleanup {
		defer func() { p.cleanup(logger) }()
	}

	clips, err := listMedia(p.opts.VideoDir, videoExtensions)
	if err != nil {
		return result, wrap(ErrNoInput, StageTrim, "", "list clips", err)
	}
	narrations, err := listMedia(p.opts.AudioDir, audioExtensions)
	if err != nil {
		return result, wrap(ErrNoInput, StageAlign, "", "list narrations", err)
	}
	logger.Info("inputs discovered",
		logging.String(logging.FieldEventType, "inputs_discovered"),
		logging.Int("clips", len(clips)),
		logging.Int("narrations", len(narrations)),
	)

	trimmed, err := p.trimStage(ctx, clips, &result)
	if err != nil {
		return result, err
	}
	if len(trimmed) == 0 {
		return result, wrap(ErrTrim, StageTrim, "", "no clips trimmed", nil)
	}

	if err := p.alignStage(ctx, clips, narrations, trimmed, &result); err != nil {
		return result, err
	}

	finalPath, err := p.concatenate(logging.WithStage(ctx, StageConcat), result.Segments)
	if err != nil {
		result.Outcomes = append(result.Outcomes, ItemOutcome{Stage: StageConcat, Name: FinalName, Status: OutcomeFailed, Err: err})
		return result, err
	}
	result.FinalPath = finalPath
	result.Outcomes = append(result.Outcomes, ItemOutcome{Stage: StageConcat, Name: FinalName, Status: OutcomeOK, Output: finalPath})
	logger.Info("pipeline complete",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("final_path", finalPath),
		logging.Int("segments", len(result.Segments)),
		logging.Int("failed_items", len(result.Failed())),
	)
	return result, nil
}

func (p *Pipeline) trimStage(ctx context.Context, clips []mediaFile, result *Result) (map[string]string, error) {
	ctx = logging.WithStage(ctx, StageTrim)
	trimmed := make(map[string]string, len(clips))
	for _, clip := range clips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := trimmed[clip.Key]; dup {
			result.Outcomes = append(result.Outcomes, ItemOutcome{
				Stage: StageTrim, Name: clip.Name, Status: OutcomeSkipped,
				Note: "another clip with the same stem sorts first",
			})
			continue
		}
		outcome := p.trimClip(ctx, clip)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Succeeded() {
			trimmed[clip.Key] = outcome.Output
		}
	}
	return trimmed, nil
}

func (p *Pipeline) alignStage(ctx context.Context, clips, narrations []mediaFile, trimmed map[string]string, result *Result) error {
	ctx = logging.WithStage(ctx, StageAlign)
	logger := logging.WithContext(ctx, p.logger)
	paired := make(map[string]bool, len(narrations))
	for index, narration := range narrations {
		if err := ctx.Err(); err != nil {
			return err
		}
		if paired[narration.Key] {
			result.Outcomes = append(result.Outcomes, ItemOutcome{
				Stage: StageAlign, Name: narration.Name, Status: OutcomeSkipped,
				Note: "another narration with the same stem sorts first",
			})
			continue
		}
		clipPath, ok := trimmed[narration.Key]
		if !ok {
			logger.Info("narration has no trimmed clip",
				logging.String(logging.FieldEventType, "narration_unpaired"),
				logging.String(logging.FieldItem, narration.Name),
			)
			result.Outcomes = append(result.Outcomes, ItemOutcome{
				Stage: StageAlign, Name: narration.Name, Status: OutcomeSkipped,
				Note: "no trimmed clip with a matching stem",
			})
			continue
		}
		paired[narration.Key] = true
		segment, outcome := p.alignPair(ctx, index, narration, clipPath)
		result.Outcomes = append(result.Outcomes, outcome)
		if outcome.Succeeded() {
			result.Segments = append(result.Segments, segment)
		}
	}

	for _, clip := range clips {
		if _, ok := trimmed[clip.Key]; !ok || paired[clip.Key] {
			continue
		}
		logger.Info("clip has no narration",
			logging.String(logging.FieldEventType, "clip_unpaired"),
			logging.String(logging.FieldItem, clip.Name),
		)
		result.Outcomes = append(result.Outcomes, ItemOutcome{
			Stage: StageAlign, Name: clip.Name, Status: OutcomeSkipped,
			Note: "no narration with a matching stem",
		})
		// Guard against reporting the same stem twice when duplicates exist.
		paired[clip.Key] = true
	}
	return nil
}

// cleanup removes scratch artifacts. The scratch final is removed whenever a
// separate final path was requested, including when copying there failed.
func (p *Pipeline) cleanup(logger *slog.Logger) {
	targets := []string{p.trimDir, p.mergeDir, filepath.Join(p.opts.OutputDir, ffmpeg.ManifestName)}
	scratchFinal := filepath.Join(p.opts.OutputDir, FinalName)
	if final := strings.TrimSpace(p.opts.FinalPath); final != "" && !samePath(final, scratchFinal) {
		targets = append(targets, scratchFinal)
	}
	for _, target := range targets {
		if err := os.RemoveAll(target); err != nil {
			logging.WarnWithContext(logger, "cleanup failed", "cleanup_failed",
				logging.String("path", target),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the scratch path manually"),
				logging.String(logging.FieldImpact, "intermediate files remain on disk"),
			)
		}
	}
	logger.Debug("scratch cleaned", logging.String(logging.FieldEventType, "cleanup_complete"))
}

// within reports whether path lies strictly below dir.
func within(dir, path string) bool {
	absDir, errDir := filepath.Abs(dir)
	absPath, errPath := filepath.Abs(path)
	if errDir != nil || errPath != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
