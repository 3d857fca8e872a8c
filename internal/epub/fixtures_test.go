package epub

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTree materialises files (slash-relative path to content) under a
// fresh temp dir and returns its root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}

// containerFor returns a container.xml pointing at opfPath.
func containerFor(opfPath string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="` + opfPath + `" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`
}

// opfFor builds a minimal OPF declaring the given XHTML documents (hrefs
// relative to the OPF directory) as both manifest and spine, in order.
// extraManifest and extraMarkup are injected verbatim into the manifest and
// after the spine, for tests that need metas or a guide.
func opfFor(docs []string, extraManifest, extraMarkup string) string {
	var manifest, spine strings.Builder
	for i, d := range docs {
		fmt.Fprintf(&manifest, `    <item id="doc%d" href="%s" media-type="application/xhtml+xml"/>`+"\n", i, d)
		fmt.Fprintf(&spine, `    <itemref idref="doc%d"/>`+"\n", i)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:creator>Test Author</dc:creator>
    <dc:language>ja</dc:language>
  </metadata>
  <manifest>
` + manifest.String() + extraManifest + `  </manifest>
  <spine>
` + spine.String() + `  </spine>
` + extraMarkup + `</package>`
}

// xhtmlDoc wraps body markup in a minimal XHTML document.
func xhtmlDoc(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>t</title></head>
<body>` + body + `</body></html>`
}

// mustReadPackage is a fixture shortcut that fails the test on error.
func mustReadPackage(t *testing.T, root string) *Package {
	t.Helper()
	pkg, err := ReadPackage(root)
	if err != nil {
		t.Fatalf("ReadPackage returned error: %v", err)
	}
	return pkg
}
