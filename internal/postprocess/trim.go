package postprocess

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"storyreel/internal/config"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/scenes"
)

// trimReencodeCRF is the quality used for frame-accurate trims. It sits
// above the segment CRF because the aligner re-encodes the result again.
const trimReencodeCRF = 20

// FirstCut returns where to cut a clip, or false when it should pass through
// untouched: no scenes, or a first scene that already spans the whole clip.
func FirstCut(detected []scenes.Scene, duration float64) (float64, bool) {
	if len(detected) == 0 {
		return 0, false
	}
	end := detected[0].End
	if math.IsNaN(end) || end <= 0 || end >= duration {
		return 0, false
	}
	return end, true
}

func (p *Pipeline) trimClip(ctx context.Context, clip mediaFile) ItemOutcome {
	ctx = logging.WithItem(ctx, clip.Name)
	logger := logging.WithContext(ctx, p.logger)
	output := filepath.Join(p.trimDir, clip.Name)
	outcome := ItemOutcome{Stage: StageTrim, Name: clip.Name, Output: output}

	if !p.opts.Force && fileutil.Exists(output) {
		logger.Debug("trimmed clip cached", logging.String(logging.FieldEventType, "trim_cached"))
		outcome.Status = OutcomeCached
		return outcome
	}

	detected, err := p.tools.Detector.Detect(ctx, clip.Path, p.opts.Scenes)
	if err != nil {
		detectErr := wrap(ErrDetection, StageTrim, clip.Name, "", err)
		logging.WarnWithContext(logger, "scene detection failed; clip kept whole", "detection_failed",
			logging.Error(detectErr),
			logging.String(logging.FieldErrorHint, "check the scene detector installation"),
			logging.String(logging.FieldImpact, "leading scene not removed"),
		)
		outcome.Note = detectErr.Error()
		detected = nil
	}

	var duration float64
	if len(detected) > 0 {
		duration, err = p.tools.Prober.Duration(ctx, clip.Path)
		if err != nil {
			return p.failTrim(logger, outcome, wrapProbe(ErrTrim, StageTrim, clip.Name, "clip duration", err))
		}
	}

	cut, ok := FirstCut(detected, duration)
	if !ok {
		if err := fileutil.CopyPreserving(clip.Path, output); err != nil {
			return p.failTrim(logger, outcome, wrap(ErrTrim, StageTrim, clip.Name, "copy clip", err))
		}
		logger.Info("clip passed through",
			logging.String(logging.FieldEventType, "trim_passthrough"),
			logging.Int("scenes", len(detected)),
		)
		outcome.Status = OutcomePassThrough
		return outcome
	}

	partial := fileutil.PartialPath(output)
	job := ffmpeg.Job{Name: StageTrim, Output: partial, Args: p.trimArgs(clip.Path, partial, cut)}
	if err := p.tools.Transcoder.Transcode(ctx, job); err != nil {
		_ = os.Remove(partial)
		return p.failTrim(logger, outcome, wrap(ErrTrim, StageTrim, clip.Name, "cut first scene", err))
	}
	if err := fileutil.Promote(partial, output); err != nil {
		return p.failTrim(logger, outcome, wrap(ErrTrim, StageTrim, clip.Name, "", err))
	}
	logger.Info("clip trimmed",
		logging.String(logging.FieldEventType, "trim_complete"),
		logging.Float64("cut_seconds", cut),
		logging.Float64("duration_seconds", duration),
		logging.String("mode", p.opts.TrimMode),
	)
	outcome.Status = OutcomeOK
	return outcome
}

func (p *Pipeline) trimArgs(input, output string, cut float64) []string {
	if p.opts.TrimMode == config.TrimModeReencode {
		profile := p.opts.Profile
		profile.CRF = trimReencodeCRF
		return ffmpeg.TrimReencodeArgs(input, output, cut, profile)
	}
	return ffmpeg.TrimCopyArgs(input, output, cut)
}

func (p *Pipeline) failTrim(logger *slog.Logger, outcome ItemOutcome, err error) ItemOutcome {
	logger.Error("clip trim failed",
		logging.String(logging.FieldEventType, "trim_failed"),
		logging.String(logging.FieldErrorHint, "clip is excluded from the final video"),
		logging.Error(err),
	)
	outcome.Status = OutcomeFailed
	outcome.Output = ""
	outcome.Err = err
	return outcome
}
