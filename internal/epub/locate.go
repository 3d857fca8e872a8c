package epub

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// containerXML models the META-INF/container.xml file used to locate the OPF.
type containerXML struct {
	XMLName   xml.Name   `xml:"container"`
	RootFiles []rootFile `xml:"rootfiles>rootfile"`
}

// rootFile represents a single <rootfile> element inside container.xml.
type rootFile struct {
	FullPath  string `xml:"full-path,attr"`
	MediaType string `xml:"media-type,attr"`
}

// containerPath is the well-known location of container.xml in an EPUB tree.
const containerPath = "META-INF/container.xml"

// LocatePackage finds the package descriptor (.opf) inside an extracted EPUB
// tree rooted at root and returns its absolute path.
//
// Strategies, in order:
//  1. META-INF/container.xml rootfile entry
//  2. content.opf at the tree root
//  3. OEBPS/content.opf
//  4. standard.opf one directory deep (legacy layout, e.g. item/standard.opf)
//  5. shallow scan: any *.opf at the root or one directory deep
//
// Returns a wrapped ErrPackageNotFound when every strategy is exhausted.
func LocatePackage(root string) (string, error) {
	if p, ok := locateFromContainer(root); ok {
		return p, nil
	}

	for _, rel := range []string{"content.opf", filepath.Join("OEBPS", "content.opf")} {
		p := filepath.Join(root, rel)
		if fileExists(p) {
			return p, nil
		}
	}

	if matches, err := filepath.Glob(filepath.Join(root, "*", "standard.opf")); err == nil && len(matches) > 0 {
		return matches[0], nil
	}

	if p, ok := shallowScanOPF(root); ok {
		return p, nil
	}

	return "", fmt.Errorf("epub: no package descriptor under %s: %w", root, ErrPackageNotFound)
}

// locateFromContainer parses META-INF/container.xml and returns the absolute
// path of the first rootfile whose target exists on disk.
func locateFromContainer(root string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(containerPath)))
	if err != nil {
		return "", false
	}
	data = stripBOM(data)

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", false
	}

	var fallback string
	for _, rf := range c.RootFiles {
		fullPath := strings.TrimSpace(rf.FullPath)
		if fullPath == "" || !isSafeRelPath(fullPath) {
			continue
		}
		p := filepath.Join(root, filepath.FromSlash(fullPath))
		if !fileExists(p) {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rf.MediaType), "application/oebps-package+xml") {
			return p, true
		}
		if fallback == "" {
			fallback = p
		}
	}

	if fallback != "" {
		return fallback, true
	}
	return "", false
}

// shallowScanOPF looks for any *.opf file at the root or one directory deep.
// Entries are visited in directory-listing order; the first match wins.
func shallowScanOPF(root string) (string, bool) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", false
	}

	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e.Name())
			continue
		}
		if strings.HasSuffix(strings.ToLower(e.Name()), ".opf") {
			return filepath.Join(root, e.Name()), true
		}
	}

	for _, d := range subdirs {
		sub, err := os.ReadDir(filepath.Join(root, d))
		if err != nil {
			continue
		}
		for _, e := range sub {
			if e.IsDir() {
				continue
			}
			if strings.HasSuffix(strings.ToLower(e.Name()), ".opf") {
				return filepath.Join(root, d, e.Name()), true
			}
		}
	}

	return "", false
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
