package scenes

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"storyreel/internal/media/ffmpeg"
)

const (
	csvName        = "scenes.csv"
	startColumn    = "Start Time (seconds)"
	endColumn      = "End Time (seconds)"
	headerSentinel = "Scene Number"
)

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// SceneDetect runs the PySceneDetect CLI with its content detector.
type SceneDetect struct {
	binary string
	run    commandRunner
}

// NewSceneDetect constructs a detector for the given scenedetect binary.
func NewSceneDetect(binary string) *SceneDetect {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "scenedetect"
	}
	return &SceneDetect{binary: binary, run: combinedOutput}
}

// Detect writes the scene list to a temporary directory and parses it.
func (d *SceneDetect) Detect(ctx context.Context, path string, opts Options) ([]Scene, error) {
	dir, err := os.MkdirTemp("", "storyreel-scenes-*")
	if err != nil {
		return nil, fmt.Errorf("scenedetect: create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"-i", path,
		"-o", dir,
		"-q",
		"detect-content",
		"-t", strconv.FormatFloat(opts.Threshold, 'f', -1, 64),
		"-m", strconv.Itoa(opts.MinSceneLen),
		"list-scenes",
		"-f", csvName,
		"-s",
		"-q",
	}
	output, err := d.run(ctx, d.binary, args...)
	if err != nil {
		if detail := ffmpeg.Snippet(output); detail != "" {
			return nil, fmt.Errorf("scenedetect %s: %w: %s", filepath.Base(path), err, detail)
		}
		return nil, fmt.Errorf("scenedetect %s: %w", filepath.Base(path), err)
	}

	file, err := os.Open(filepath.Join(dir, csvName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Older releases skip the file entirely when nothing was cut.
			return nil, nil
		}
		return nil, fmt.Errorf("scenedetect: open scene list: %w", err)
	}
	defer file.Close()
	return ParseSceneList(file)
}

// ParseSceneList parses a PySceneDetect list-scenes CSV. Lines before the
// header row, such as the optional "Timecode List" line, are ignored.
func ParseSceneList(r io.Reader) ([]Scene, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	startIdx, endIdx := -1, -1
	var scenes []Scene
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse scene list: %w", err)
		}
		if startIdx < 0 {
			if len(record) == 0 || strings.TrimSpace(record[0]) != headerSentinel {
				continue
			}
			for i, name := range record {
				switch strings.TrimSpace(name) {
				case startColumn:
					startIdx = i
				case endColumn:
					endIdx = i
				}
			}
			if startIdx < 0 || endIdx < 0 {
				return nil, fmt.Errorf("parse scene list: header missing %q or %q", startColumn, endColumn)
			}
			continue
		}
		if len(record) <= startIdx || len(record) <= endIdx {
			continue
		}
		start, err := strconv.ParseFloat(strings.TrimSpace(record[startIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse scene list: start %q: %w", record[startIdx], err)
		}
		end, err := strconv.ParseFloat(strings.TrimSpace(record[endIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse scene list: end %q: %w", record[endIdx], err)
		}
		scenes = append(scenes, Scene{Start: start, End: end})
	}
	return scenes, nil
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	return buf.Bytes(), err
}
