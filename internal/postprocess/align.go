package postprocess

import (
	"context"
	"os"
	"path/filepath"

	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
)

// alignPair re-times the clip at clipPath to the length of narration and
// mixes the two soundtracks into merged/NNN_<stem>.mp4.
func (p *Pipeline) alignPair(ctx context.Context, index int, narration mediaFile, clipPath string) (Segment, ItemOutcome) {
	ctx = logging.WithItem(ctx, narration.Name)
	logger := logging.WithContext(ctx, p.logger)
	output := filepath.Join(p.mergeDir, SegmentName(index, narration.Stem))
	outcome := ItemOutcome{Stage: StageAlign, Name: narration.Name}

	fail := func(err error) (Segment, ItemOutcome) {
		logger.Error("alignment failed",
			logging.String(logging.FieldEventType, "align_failed"),
			logging.String(logging.FieldErrorHint, "pair is excluded from the final video"),
			logging.Error(err),
		)
		outcome.Status = OutcomeFailed
		outcome.Err = err
		return Segment{}, outcome
	}

	clipDuration, err := p.tools.Prober.Duration(ctx, clipPath)
	if err != nil {
		return fail(wrapProbe(ErrAlignment, StageAlign, narration.Name, "clip duration", err))
	}
	narrationDuration, err := p.tools.Prober.Duration(ctx, narration.Path)
	if err != nil {
		return fail(wrapProbe(ErrAlignment, StageAlign, narration.Name, "narration duration", err))
	}
	hasAudio, err := p.tools.Prober.HasAudio(ctx, clipPath)
	if err != nil {
		logging.WarnWithContext(logger, "audio stream check failed; using narration only", "audio_probe_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "clip sound effects dropped from segment"),
		)
		hasAudio = false
	}

	factor := narrationDuration / clipDuration
	partial := fileutil.PartialPath(output)
	args, err := ffmpeg.AlignArgs(ffmpeg.AlignSpec{
		Video:            clipPath,
		Narration:        narration.Path,
		Output:           partial,
		PTSFactor:        factor,
		HasOriginalAudio: hasAudio,
		VideoVolume:      p.opts.VideoVolume,
		AudioVolume:      p.opts.AudioVolume,
		Profile:          p.opts.Profile,
	})
	if err != nil {
		return fail(wrap(ErrAlignment, StageAlign, narration.Name, "build filter", err))
	}
	if err := p.tools.Transcoder.Transcode(ctx, ffmpeg.Job{Name: StageAlign, Args: args, Output: partial}); err != nil {
		_ = os.Remove(partial)
		return fail(wrap(ErrAlignment, StageAlign, narration.Name, "encode segment", err))
	}
	if err := fileutil.Promote(partial, output); err != nil {
		return fail(wrap(ErrAlignment, StageAlign, narration.Name, "", err))
	}

	logger.Info("segment aligned",
		logging.String(logging.FieldEventType, "align_complete"),
		logging.Float64("clip_seconds", clipDuration),
		logging.Float64("narration_seconds", narrationDuration),
		logging.Float64("pts_factor", factor),
		logging.Bool("clip_audio", hasAudio),
	)
	outcome.Status = OutcomeOK
	outcome.Output = output
	return Segment{Path: output, Index: index, Stem: narration.Stem, PTSFactor: factor}, outcome
}
