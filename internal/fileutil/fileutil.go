package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PartialPath returns the hidden in-progress path for dst. The extension is
// kept so tools that infer formats from file names still work.
func PartialPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), ".partial."+filepath.Base(dst))
}

// Promote renames a finished partial file into place.
func Promote(partial, dst string) error {
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("promote %s: %w", filepath.Base(dst), err)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CopyPreserving copies src to dst byte for byte, keeping the source
// permission bits and modification time. dst only appears once complete.
func CopyPreserving(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	tmpName, err := copyToTemp(src, dst, info.Mode().Perm(), nil)
	if err != nil {
		return err
	}
	if err := os.Chtimes(tmpName, info.ModTime(), info.ModTime()); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("preserve mtime: %w", err)
	}
	return Promote(tmpName, dst)
}

// CopyFileVerified copies src to dst with SHA256 and size verification.
// dst is left untouched on mismatch.
func CopyFileVerified(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	var written int64
	tmpName, err := copyToTemp(src, dst, 0o644, func(in io.Reader, out io.Writer) (int64, error) {
		n, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
		written = n
		return n, err
	})
	if err != nil {
		return err
	}
	if written != info.Size() {
		_ = os.Remove(tmpName)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(tmpName)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return Promote(tmpName, dst)
}

type copyFunc func(in io.Reader, out io.Writer) (int64, error)

// copyToTemp streams src into a temp file beside dst and returns its name.
func copyToTemp(src, dst string, mode os.FileMode, copier copyFunc) (string, error) {
	if copier == nil {
		copier = func(in io.Reader, out io.Writer) (int64, error) { return io.Copy(out, in) }
	}
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmpName := out.Name()
	fail := func(err error) (string, error) {
		_ = out.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if _, err := copier(in, out); err != nil {
		return fail(err)
	}
	if err := out.Chmod(mode); err != nil {
		return fail(err)
	}
	if err := out.Sync(); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", err
	}
	return tmpName, nil
}
