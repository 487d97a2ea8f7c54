package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// stderrSnippetLimit bounds how much ffmpeg stderr is carried in errors.
const stderrSnippetLimit = 200

// Job is one ffmpeg invocation. Args excludes the binary and the global
// flags Runner prepends.
type Job struct {
	Name   string
	Args   []string
	Output string
}

// commandRunner executes name with args and returns captured stderr.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Runner executes ffmpeg jobs.
type Runner struct {
	binary string
	run    commandRunner
}

// NewRunner constructs a Runner for the given ffmpeg binary.
func NewRunner(binary string) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Runner{binary: binary, run: execRunner}
}

// Transcode runs job and returns an error carrying a stderr snippet when
// ffmpeg exits non-zero.
func (r *Runner) Transcode(ctx context.Context, job Job) error {
	if len(job.Args) == 0 {
		return fmt.Errorf("ffmpeg %s: no arguments", job.Name)
	}
	args := append([]string{"-y", "-hide_banner", "-nostdin", "-loglevel", "error"}, job.Args...)
	stderr, err := r.run(ctx, r.binary, args...)
	if err != nil {
		if snippet := Snippet(stderr); snippet != "" {
			return fmt.Errorf("ffmpeg %s: %w: %s", job.Name, err, snippet)
		}
		return fmt.Errorf("ffmpeg %s: %w", job.Name, err)
	}
	return nil
}

// Output runs ffmpeg with args verbatim and returns its stderr, which is
// where filters such as showinfo report.
func (r *Runner) Output(ctx context.Context, args ...string) ([]byte, error) {
	return r.run(ctx, r.binary, args...)
}

// Snippet trims tool output to a loggable size without splitting a UTF-8
// sequence.
func Snippet(output []byte) string {
	s := strings.TrimSpace(string(output))
	if len(s) <= stderrSnippetLimit {
		return s
	}
	cut := stderrSnippetLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stderr.Bytes(), fmt.Errorf("exit status %d", exitErr.ExitCode())
		}
	}
	return stderr.Bytes(), err
}
