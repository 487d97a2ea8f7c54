package deps

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// versionRunner runs a binary with a version flag and returns its output.
var versionRunner = func(ctx context.Context, command string, flag string) ([]byte, error) {
	return exec.CommandContext(ctx, command, flag).CombinedOutput() //nolint:gosec
}

// Version returns the first line a binary prints for flag, for example
// "ffmpeg version 6.1.1" for `ffmpeg -version`. It returns "" when the binary
// fails or prints nothing.
func Version(ctx context.Context, command, flag string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	output, err := versionRunner(ctx, command, flag)
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(line)
}

// VersionFlag returns the flag a known tool uses to report its version.
func VersionFlag(name string) string {
	switch strings.ToLower(name) {
	case "scenedetect":
		return "version"
	default:
		return "-version"
	}
}
