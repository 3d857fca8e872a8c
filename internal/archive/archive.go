// Package archive prepares EPUB input for extraction: it unpacks .epub ZIP
// containers into temporary trees and recognises already-extracted trees on
// disk, so downstream code always works against a plain directory.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxDecompressSize is the maximum allowed decompressed size for a single
// ZIP entry. This guards against zip bomb attacks. 256 MB.
const maxDecompressSize int64 = 256 * 1024 * 1024

// Source is a ready-to-read extracted EPUB tree. Cleanup removes the
// temporary tree when the source was unpacked from a container; for trees
// that already existed on disk it is a no-op.
type Source struct {
	// Root is the directory holding the extracted EPUB contents.
	Root string

	// Name is the display name of the input: the container filename stem,
	// or the directory basename for pre-extracted input.
	Name string

	// Cleanup releases any temporary files backing the source. Always safe
	// to call, including via defer.
	Cleanup func()
}

// Prepare turns an input path into a readable tree. A directory is used in
// place; a file is treated as a ZIP container and unpacked into a temporary
// directory.
func Prepare(input string) (*Source, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("archive: stat input: %w", err)
	}

	if info.IsDir() {
		return &Source{
			Root:    input,
			Name:    filepath.Base(filepath.Clean(input)),
			Cleanup: func() {},
		}, nil
	}

	root, cleanup, err := Unpack(input)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return &Source{Root: root, Name: name, Cleanup: cleanup}, nil
}

// Unpack extracts a ZIP container into a fresh temporary directory and
// returns its path with a cleanup func that removes it. Entries with unsafe
// paths or oversized contents abort the unpack.
func Unpack(containerPath string) (root string, cleanup func(), err error) {
	zr, err := zip.OpenReader(containerPath)
	if err != nil {
		return "", nil, fmt.Errorf("archive: open container %s: %w", containerPath, err)
	}
	defer zr.Close()

	dir, err := os.MkdirTemp("", "chapterize-*")
	if err != nil {
		return "", nil, fmt.Errorf("archive: create temp dir: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	for _, f := range zr.File {
		if err := extractEntry(dir, f); err != nil {
			cleanup()
			return "", nil, err
		}
	}

	return dir, cleanup, nil
}

// extractEntry writes one ZIP entry under dir, enforcing path and size guards.
func extractEntry(dir string, f *zip.File) error {
	if !isSafePath(f.Name) {
		return fmt.Errorf("archive: unsafe zip entry path: %s", f.Name)
	}
	if f.UncompressedSize64 > uint64(maxDecompressSize) {
		return fmt.Errorf("archive: zip entry %s too large: %d bytes (max %d)", f.Name, f.UncompressedSize64, maxDecompressSize)
	}

	target := filepath.Join(dir, filepath.FromSlash(path.Clean(f.Name)))

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("archive: create entry dir: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("archive: open zip entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", target, err)
	}
	defer out.Close()

	// Read up to limit+1 to detect forged size declarations.
	n, err := io.Copy(out, io.LimitReader(rc, maxDecompressSize+1))
	if err != nil {
		return fmt.Errorf("archive: extract zip entry %s: %w", f.Name, err)
	}
	if n > maxDecompressSize {
		return fmt.Errorf("archive: zip entry %s decompressed size exceeds limit (%d bytes)", f.Name, maxDecompressSize)
	}
	return nil
}

// isSafePath checks whether p is a safe ZIP-internal path that does not
// escape the extraction root via path traversal.
func isSafePath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// IsExtractedTree reports whether dir looks like an already-extracted EPUB:
// it carries a META-INF directory or a mimetype file at its root.
func IsExtractedTree(dir string) bool {
	if info, err := os.Stat(filepath.Join(dir, "META-INF")); err == nil && info.IsDir() {
		return true
	}
	if info, err := os.Stat(filepath.Join(dir, "mimetype")); err == nil && !info.IsDir() {
		return true
	}
	// Some hand-extracted trees drop META-INF; a root-level OPF still counts.
	matches, _ := filepath.Glob(filepath.Join(dir, "*.opf"))
	return len(matches) > 0
}
