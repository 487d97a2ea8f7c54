package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/ledger"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/postprocess"
	"storyreel/internal/preflight"
	"storyreel/internal/scenes"
)

// lockFileName guards an output directory against concurrent runs.
const lockFileName = ".storyreel.lock"

type runFlags struct {
	videoDir    string
	audioDir    string
	outputDir   string
	finalPath   string
	threshold   float64
	videoVolume float64
	audioVolume float64
	force       bool
	noCleanup   bool
	trimMode    string
	detector    string
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trim, align, and concatenate clips with their narration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg, err := applyRunFlags(cmd, base, flags)
			if err != nil {
				return err
			}
			job, err := resolveRunDirs(flags)
			if err != nil {
				return err
			}
			return executeRun(cmd, cfg, job)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.videoDir, "video", "v", "", "Directory of story clips")
	f.StringVarP(&flags.audioDir, "audio", "a", "", "Directory of narration tracks")
	f.StringVarP(&flags.outputDir, "output", "o", "", "Scratch directory for trimmed and merged files")
	f.StringVarP(&flags.finalPath, "final", "f", "", "Copy the finished video to this path")
	f.Float64VarP(&flags.threshold, "threshold", "t", 0, "Scene detection threshold (overrides scenes.threshold)")
	f.Float64Var(&flags.videoVolume, "video-volume", 0, "Gain for the clip's own audio (overrides mix.video_volume)")
	f.Float64Var(&flags.audioVolume, "audio-volume", 0, "Gain for the narration (overrides mix.audio_volume)")
	f.BoolVar(&flags.force, "force", false, "Re-trim clips even when trimmed output exists")
	f.BoolVar(&flags.noCleanup, "no-cleanup", false, "Keep trimmed/ and merged/ after the run")
	f.StringVar(&flags.trimMode, "trim-mode", "", "Trim mode: copy or reencode (overrides trim.mode)")
	f.StringVar(&flags.detector, "detector", "", "Scene detector: scenedetect or ffmpeg (overrides scenes.backend)")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("audio")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// applyRunFlags returns a copy of base with explicitly set flags applied,
// then normalized and validated the same way a config file is.
func applyRunFlags(cmd *cobra.Command, base *config.Config, flags runFlags) (*config.Config, error) {
	cfg := *base
	changed := cmd.Flags().Changed
	if changed("threshold") {
		cfg.Scenes.Threshold = flags.threshold
	}
	if changed("video-volume") {
		cfg.Mix.VideoVolume = flags.videoVolume
	}
	if changed("audio-volume") {
		cfg.Mix.AudioVolume = flags.audioVolume
	}
	if changed("trim-mode") {
		cfg.Trim.Mode = flags.trimMode
	}
	if changed("detector") {
		cfg.Scenes.Backend = flags.detector
	}
	if flags.force {
		cfg.Trim.Force = true
	}
	if flags.noCleanup {
		cfg.Run.Cleanup = false
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run options: %w", err)
	}
	return &cfg, nil
}

type runDirs struct {
	video  string
	audio  string
	output string
	final  string
}

func resolveRunDirs(flags runFlags) (runDirs, error) {
	var dirs runDirs
	for _, entry := range []struct {
		name  string
		value string
		dst   *string
	}{
		{"--video", flags.videoDir, &dirs.video},
		{"--audio", flags.audioDir, &dirs.audio},
		{"--output", flags.outputDir, &dirs.output},
		{"--final", flags.finalPath, &dirs.final},
	} {
		if strings.TrimSpace(entry.value) == "" {
			continue
		}
		expanded, err := config.ExpandPath(strings.TrimSpace(entry.value))
		if err != nil {
			return runDirs{}, fmt.Errorf("%s: %w", entry.name, err)
		}
		*entry.dst = expanded
	}
	return dirs, nil
}

func executeRun(cmd *cobra.Command, cfg *config.Config, dirs runDirs) error {
	results := preflight.RunAll(cfg, preflight.Dirs{Video: dirs.video, Audio: dirs.audio, Output: dirs.output})
	if failed := preflight.Failed(results); len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, r := range failed {
			parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
		return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
	}

	if err := os.MkdirAll(dirs.output, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(dirs.output, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another storyreel run is using %s", dirs.output)
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	runID := uuid.NewString()
	ctx := logging.WithRunID(cmd.Context(), runID)

	prober := ffprobe.NewProber(cfg.Tools.FFprobe)
	runner := ffmpeg.NewRunner(cfg.Tools.FFmpeg)
	detector, err := scenes.New(cfg, runner, prober)
	if err != nil {
		return err
	}

	opts := postprocess.OptionsFromConfig(cfg)
	opts.VideoDir = dirs.video
	opts.AudioDir = dirs.audio
	opts.OutputDir = dirs.output
	opts.FinalPath = dirs.final
	pipeline, err := postprocess.New(opts, postprocess.Tools{Prober: prober, Detector: detector, Transcoder: runner}, logger)
	if err != nil {
		return err
	}

	started := time.Now().UTC()
	result, runErr := pipeline.Run(ctx)
	run := ledgerRun(runID, dirs, started, result, runErr, ctx.Err())
	recordRun(ctx, cfg, logger, run)

	if runErr != nil {
		return runErr
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.FinalPath)
	return nil
}

// ledgerRun converts a pipeline result into its ledger row.
func ledgerRun(id string, dirs runDirs, started time.Time, result postprocess.Result, runErr, ctxErr error) ledger.Run {
	run := ledger.Run{
		ID:         id,
		Status:     ledger.StatusSucceeded,
		VideoDir:   dirs.video,
		AudioDir:   dirs.audio,
		OutputDir:  dirs.output,
		FinalPath:  result.FinalPath,
		Segments:   len(result.Segments),
		StartedAt:  started,
		FinishedAt: started.Add(result.Elapsed),
	}
	switch {
	case runErr == nil:
	case ctxErr != nil || errors.Is(runErr, context.Canceled):
		run.Status = ledger.StatusCanceled
		run.ErrorMessage = runErr.Error()
	default:
		run.Status = ledger.StatusFailed
		run.ErrorMessage = runErr.Error()
	}
	run.Items = make([]ledger.Item, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		run.Items = append(run.Items, ledger.Item{
			Stage:      outcome.Stage,
			Name:       outcome.Name,
			Status:     outcome.Status,
			OutputPath: outcome.Output,
			Detail:     outcome.Detail(),
		})
	}
	return run
}

// recordRun writes the run to the ledger. A ledger failure never changes the
// run's outcome.
func recordRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, run ledger.Run) {
	ctx = context.WithoutCancel(ctx)
	logger = logging.WithContext(ctx, logger)
	store, err := ledger.Open(cfg.LedgerPath())
	if err != nil {
		logging.WarnWithContext(logger, "run ledger unavailable", "ledger_open_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded in history"),
		)
		return
	}
	defer store.Close()
	if err := store.RecordRun(ctx, run); err != nil {
		logging.WarnWithContext(logger, "failed to record run", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded in history"),
		)
		return
	}
	logger.Debug("run recorded",
		logging.String("status", string(run.Status)),
		logging.Int("items", len(run.Items)),
	)
}
