package postprocess

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/unicode/norm"
)

var (
	videoExtensions = extensionSet(".mp4", ".mov", ".avi", ".mkv", ".webm")
	audioExtensions = extensionSet(".wav", ".mp3", ".m4a", ".aac")
)

func extensionSet(exts ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[ext] = struct{}{}
	}
	return set
}

// mediaFile is a discovered input. Key is the NFC-normalised stem used for
// pairing; Stem keeps the name as it appears on disk.
type mediaFile struct {
	Path string
	Name string
	Stem string
	Key  string
}

// listMedia returns the regular files in dir whose extension is in exts,
// case-insensitively, in natural filename order. Hidden files are ignored.
func listMedia(dir string, exts map[string]struct{}) ([]mediaFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var files []mediaFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		if _, ok := exts[strings.ToLower(ext)]; !ok {
			continue
		}
		stem := strings.TrimSuffix(name, ext)
		files = append(files, mediaFile{
			Path: filepath.Join(dir, name),
			Name: name,
			Stem: stem,
			Key:  stemKey(stem),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return natural.Less(files[i].Name, files[j].Name)
	})
	return files, nil
}

// stemKey normalises a stem so visually identical names from different
// filesystems pair up.
func stemKey(stem string) string {
	return norm.NFC.String(stem)
}

// SegmentName is the file name of the aligned segment at index.
func SegmentName(index int, stem string) string {
	return fmt.Sprintf("%03d_%s.mp4", index, stem)
}
