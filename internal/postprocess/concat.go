package postprocess

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
)

// concatenate joins segments in index order into final_merged.mp4 and, when
// a final path is configured, copies the result there.
func (p *Pipeline) concatenate(ctx context.Context, segments []Segment) (string, error) {
	logger := logging.WithContext(ctx, p.logger)
	if len(segments) == 0 {
		return "", wrap(ErrConcat, StageConcat, "", "", ffmpeg.ErrNoSegments)
	}

	paths := make([]string, len(segments))
	for i, segment := range segments {
		paths[i] = segment.Path
	}
	manifest := filepath.Join(p.opts.OutputDir, ffmpeg.ManifestName)
	if err := ffmpeg.WriteManifest(manifest, paths); err != nil {
		return "", wrap(ErrConcat, StageConcat, "", "write manifest", err)
	}

	scratch := filepath.Join(p.opts.OutputDir, FinalName)
	partial := fileutil.PartialPath(scratch)
	job := ffmpeg.Job{Name: StageConcat, Args: ffmpeg.ConcatArgs(manifest, partial), Output: partial}
	if err := p.tools.Transcoder.Transcode(ctx, job); err != nil {
		_ = os.Remove(partial)
		return "", wrap(ErrConcat, StageConcat, "", "join segments", err)
	}
	if err := fileutil.Promote(partial, scratch); err != nil {
		return "", wrap(ErrConcat, StageConcat, "", "", err)
	}

	final := strings.TrimSpace(p.opts.FinalPath)
	if final == "" || samePath(final, scratch) {
		logger.Info("segments concatenated",
			logging.String(logging.FieldEventType, "concat_complete"),
			logging.Int("segments", len(segments)),
			logging.String("output", scratch),
		)
		return scratch, nil
	}
	if err := fileutil.CopyFileVerified(scratch, final); err != nil {
		return "", wrap(ErrConcat, StageConcat, "", "copy to final path", err)
	}
	logger.Info("segments concatenated",
		logging.String(logging.FieldEventType, "concat_complete"),
		logging.Int("segments", len(segments)),
		logging.String("output", final),
	)
	return final, nil
}
