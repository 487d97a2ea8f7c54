package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes size bytes derived from the file name, so two fixtures
// never compare equal by accident. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	seed := []byte(filepath.Base(path) + "\n")
	data := bytes.Repeat(seed, size/len(seed)+1)[:size]
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WritePair creates <stem>.mp4 in videoDir and <stem>.wav in audioDir.
func WritePair(t testing.TB, videoDir, audioDir, stem string) {
	t.Helper()
	WriteFile(t, filepath.Join(videoDir, stem+".mp4"), 4096)
	WriteFile(t, filepath.Join(audioDir, stem+".wav"), 1024)
}
