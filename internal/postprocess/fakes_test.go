package postprocess

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"storyreel/internal/logging"
	"storyreel/internal/media/ffmpeg"
	"storyreel/internal/scenes"
)

// fakeMedia is what the fake tools write into "media" files so durations
// flow through trim, align, and concat without real encoders.
type fakeMedia struct {
	Duration float64
	Audio    bool
	Parts    []string
}

func encodeMedia(m fakeMedia) []byte {
	return []byte(fmt.Sprintf("duration=%s\naudio=%t\nparts=%s\n",
		strconv.FormatFloat(m.Duration, 'f', -1, 64), m.Audio, strings.Join(m.Parts, ",")))
}

func readMedia(path string) (fakeMedia, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fakeMedia{}, err
	}
	var m fakeMedia
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "duration":
			m.Duration, err = strconv.ParseFloat(value, 64)
			if err != nil {
				return fakeMedia{}, err
			}
		case "audio":
			m.Audio = value == "true"
		case "parts":
			if value != "" {
				m.Parts = strings.Split(value, ",")
			}
		}
	}
	return m, nil
}

func writeMedia(t testing.TB, path string, m fakeMedia) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, encodeMedia(m), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
}

type fakeProber struct {
	failDuration map[string]bool
	failAudio    bool
}

func (p *fakeProber) Duration(_ context.Context, path string) (float64, error) {
	if p.failDuration[filepath.Base(path)] {
		return 0, errors.New("moov atom not found")
	}
	m, err := readMedia(path)
	if err != nil {
		return 0, err
	}
	return m.Duration, nil
}

func (p *fakeProber) HasAudio(_ context.Context, path string) (bool, error) {
	if p.failAudio {
		return false, errors.New("ffprobe exited 1")
	}
	m, err := readMedia(path)
	if err != nil {
		return false, err
	}
	return m.Audio, nil
}

type fakeDetector struct {
	scenes map[string][]scenes.Scene
	errs   map[string]error
	calls  []string
}

func (d *fakeDetector) Detect(_ context.Context, path string, _ scenes.Options) ([]scenes.Scene, error) {
	name := filepath.Base(path)
	d.calls = append(d.calls, name)
	if err := d.errs[name]; err != nil {
		return nil, err
	}
	return d.scenes[name], nil
}

type fakeTranscoder struct {
	t    testing.TB
	jobs []ffmpeg.Job
	fail func(job ffmpeg.Job) bool
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func (f *fakeTranscoder) Transcode(_ context.Context, job ffmpeg.Job) error {
	f.jobs = append(f.jobs, job)
	if f.fail != nil && f.fail(job) {
		// Leave a partial file behind to prove the caller removes it.
		_ = os.WriteFile(job.Output, []byte("partial"), 0o644)
		return errors.New("exit status 1: Conversion failed!")
	}
	switch job.Name {
	case StageTrim:
		in, err := readMedia(argAfter(job.Args, "-i"))
		if err != nil {
			return err
		}
		ss, err := strconv.ParseFloat(argAfter(job.Args, "-ss"), 64)
		if err != nil {
			return err
		}
		in.Duration -= ss
		writeMedia(f.t, job.Output, in)
	case StageAlign:
		clip, err := readMedia(job.Args[1])
		if err != nil {
			return err
		}
		filter := argAfter(job.Args, "-filter_complex")
		rest := strings.TrimPrefix(filter, "[0:v]setpts=PTS*")
		factor, err := strconv.ParseFloat(rest[:strings.Index(rest, "[")], 64)
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(filepath.Base(job.Args[3]), filepath.Ext(job.Args[3]))
		writeMedia(f.t, job.Output, fakeMedia{Duration: clip.Duration * factor, Audio: true, Parts: []string{stem}})
	case StageConcat:
		file, err := os.Open(argAfter(job.Args, "-i"))
		if err != nil {
			return err
		}
		defer file.Close()
		var out fakeMedia
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			path := strings.TrimSuffix(strings.TrimPrefix(scanner.Text(), "file '"), "'")
			m, err := readMedia(path)
			if err != nil {
				return err
			}
			out.Duration += m.Duration
			out.Audio = true
			out.Parts = append(out.Parts, m.Parts...)
		}
		writeMedia(f.t, job.Output, out)
	default:
		return fmt.Errorf("unexpected job %q", job.Name)
	}
	return nil
}

func (f *fakeTranscoder) jobsNamed(name string) []ffmpeg.Job {
	var jobs []ffmpeg.Job
	for _, job := range f.jobs {
		if job.Name == name {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

type fixture struct {
	t          *testing.T
	videoDir   string
	audioDir   string
	outDir     string
	prober     *fakeProber
	detector   *fakeDetector
	transcoder *fakeTranscoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	return &fixture{
		t:          t,
		videoDir:   filepath.Join(base, "video"),
		audioDir:   filepath.Join(base, "audio"),
		outDir:     filepath.Join(base, "out"),
		prober:     &fakeProber{failDuration: map[string]bool{}},
		detector:   &fakeDetector{scenes: map[string][]scenes.Scene{}, errs: map[string]error{}},
		transcoder: &fakeTranscoder{t: t},
	}
}

func (f *fixture) clip(name string, duration float64, audio bool, detected ...scenes.Scene) string {
	path := filepath.Join(f.videoDir, name)
	writeMedia(f.t, path, fakeMedia{Duration: duration, Audio: audio})
	f.detector.scenes[name] = detected
	return path
}

func (f *fixture) narration(name string, duration float64) string {
	path := filepath.Join(f.audioDir, name)
	writeMedia(f.t, path, fakeMedia{Duration: duration, Audio: true})
	return path
}

func (f *fixture) options() Options {
	return Options{
		VideoDir:    f.videoDir,
		AudioDir:    f.audioDir,
		OutputDir:   f.outDir,
		Scenes:      scenes.Options{Threshold: 27, MinSceneLen: 15},
		TrimMode:    "copy",
		VideoVolume: 0.05,
		AudioVolume: 4,
		Profile: ffmpeg.Profile{
			VideoCodec: "libx264", Preset: "fast", CRF: 23, PixelFormat: "yuv420p",
			AudioCodec: "aac", AudioBitrate: "192k", SampleRate: 48000, Channels: 2,
		},
	}
}

func (f *fixture) run(mutate func(*Options)) (Result, error) {
	f.t.Helper()
	for _, dir := range []string{f.videoDir, f.audioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			f.t.Fatalf("mkdir: %v", err)
		}
	}
	opts := f.options()
	if mutate != nil {
		mutate(&opts)
	}
	p, err := New(opts, Tools{Prober: f.prober, Detector: f.detector, Transcoder: f.transcoder}, logging.NewNop())
	if err != nil {
		f.t.Fatalf("New: %v", err)
	}
	return p.Run(context.Background())
}

func findOutcome(t *testing.T, result Result, stage, name string) ItemOutcome {
	t.Helper()
	for _, o := range result.Outcomes {
		if o.Stage == stage && o.Name == name {
			return o
		}
	}
	t.Fatalf("no %s outcome for %s in %+v", stage, name, result.Outcomes)
	return ItemOutcome{}
}
