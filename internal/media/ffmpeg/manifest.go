package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ManifestName is the concat list file written into the output directory.
const ManifestName = "file_list.txt"

// ErrNoSegments is returned when a concat manifest would be empty.
var ErrNoSegments = errors.New("no segments to concatenate")

// ManifestLine renders one concat demuxer entry. Single quotes inside the
// path are closed, escaped, and reopened as the demuxer expects.
func ManifestLine(path string) string {
	return "file '" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

// WriteManifest writes a concat list for segments to path using absolute
// paths so the list resolves regardless of ffmpeg's working directory.
func WriteManifest(path string, segments []string) error {
	if len(segments) == 0 {
		return ErrNoSegments
	}
	var b strings.Builder
	for _, segment := range segments {
		abs, err := filepath.Abs(segment)
		if err != nil {
			return fmt.Errorf("resolve segment %q: %w", segment, err)
		}
		b.WriteString(ManifestLine(abs))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}
