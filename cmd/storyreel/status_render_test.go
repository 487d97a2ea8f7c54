package main

import (
	"io"
	"strings"
	"testing"

	"storyreel/internal/deps"
	"storyreel/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("FFmpeg", statusError, "binary \"ffmpeg\" not found", false)
	want := "  FFmpeg:                [ERROR] binary \"ffmpeg\" not found"
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("FFprobe", statusOK, "/usr/bin/ffprobe", true)
	if !strings.HasPrefix(got, "\x1b[32m") || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestDependencyLinesSummarisesMissing(t *testing.T) {
	statuses := []deps.Status{
		{Requirement: deps.Requirement{Name: "FFmpeg", Command: "ffmpeg"}, Detail: `binary "ffmpeg" not found`},
		{Requirement: deps.Requirement{Name: "PySceneDetect", Command: "scenedetect", Optional: true}, Detail: `binary "scenedetect" not found`},
	}
	lines, missing := dependencyLines(statuses, false)
	if missing != 1 {
		t.Fatalf("missing = %d, want 1", missing)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "[ERROR]") {
		t.Fatalf("expected error line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "[WARN]") || !strings.Contains(lines[1], "(optional)") {
		t.Fatalf("expected optional warning, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "Missing dependencies") || !strings.Contains(lines[2], "FFmpeg") {
		t.Fatalf("expected summary line, got %q", lines[2])
	}
}

func TestPreflightKind(t *testing.T) {
	tests := []struct {
		result preflight.Result
		want   statusKind
	}{
		{preflight.Result{Passed: true, Detail: "/usr/bin/ffmpeg"}, statusOK},
		{preflight.Result{Passed: true, Detail: `binary "scenedetect" not found (optional)`}, statusWarn},
		{preflight.Result{Passed: false, Detail: "missing"}, statusError},
	}
	for _, tt := range tests {
		if got := preflightKind(tt.result); got != tt.want {
			t.Fatalf("preflightKind(%+v) = %v, want %v", tt.result, got, tt.want)
		}
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTableAlignsAndTrims(t *testing.T) {
	out := renderTable([]column{
		{Header: "Item"},
		{Header: "Segments", Align: alignRight},
		{Header: "Detail", MaxWidth: 8},
	}, [][]string{{"page_001.mp4", "3", "a very long failure message"}, {"short"}})
	requireContains(t, out, "page_001.mp4")
	requireContains(t, out, "SEGMENTS")
	if strings.Contains(out, "failure message") {
		t.Fatalf("expected detail column to be trimmed:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty output without columns")
	}
}
