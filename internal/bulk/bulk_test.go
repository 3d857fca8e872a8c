package bulk

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nut1414/chapterize/internal/extract"
)

// writeEPUB builds a minimal single-chapter EPUB container at path.
func writeEPUB(t *testing.T, path, title string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	files := map[string]string{
		"mimetype": "application/epub+zip",
		"META-INF/container.xml": `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles><rootfile full-path="content.opf" media-type="application/oebps-package+xml"/></rootfiles>
</container>`,
		"content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>` + title + `</dc:title></metadata>
  <manifest><item id="c1" href="ch1.xhtml" media-type="application/xhtml+xml"/></manifest>
  <spine><itemref idref="c1"/></spine>
</package>`,
		"ch1.xhtml": `<html xmlns="http://www.w3.org/1999/xhtml"><body><h1>Only Chapter</h1><p>text</p></body></html>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeEPUB(t, filepath.Join(dir, "a.epub"), "A")
	writeEPUB(t, filepath.Join(dir, "sub", "b.epub"), "B")
	writeEPUB(t, filepath.Join(dir, ".hidden.epub"), "H")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	flat, err := Discover(dir, false)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(flat) != 1 || flat[0] != "a.epub" {
		t.Errorf("Discover(flat) = %v, want [a.epub]", flat)
	}

	recursive, err := Discover(dir, true)
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(recursive) != 2 {
		t.Errorf("Discover(recursive) = %v, want 2 books", recursive)
	}
}

func TestRun_IsolatesFailures(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeEPUB(t, filepath.Join(inDir, "good1.epub"), "Good One")
	writeEPUB(t, filepath.Join(inDir, "good2.epub"), "Good Two")
	if err := os.WriteFile(filepath.Join(inDir, "broken.epub"), []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}

	summary, err := Run(Options{
		InputDir:  inDir,
		OutputDir: outDir,
		Extract:   extract.Options{},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if summary.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", summary.Succeeded)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if len(summary.Results) != 3 {
		t.Errorf("len(Results) = %d, want 3", len(summary.Results))
	}

	// Each successful book gets its own output directory named after the stem.
	for _, stem := range []string{"good1", "good2"} {
		index := filepath.Join(outDir, stem, "index.txt")
		if _, err := os.Stat(index); err != nil {
			t.Errorf("missing %s: %v", index, err)
		}
	}
}

func TestRun_PreservesRelativeStructure(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeEPUB(t, filepath.Join(inDir, "series", "vol1.epub"), "Volume One")

	summary, err := Run(Options{
		InputDir:  inDir,
		OutputDir: outDir,
		Recursive: true,
		Extract:   extract.Options{},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("Succeeded = %d, want 1", summary.Succeeded)
	}

	index := filepath.Join(outDir, "series", "vol1", "index.txt")
	if _, err := os.Stat(index); err != nil {
		t.Errorf("missing %s: %v", index, err)
	}
}

func TestRun_EmptyDirectory(t *testing.T) {
	_, err := Run(Options{
		InputDir:  t.TempDir(),
		OutputDir: t.TempDir(),
	}, zerolog.Nop())
	if err == nil {
		t.Fatal("Run succeeded on empty directory, want error")
	}
}
