package epub

import (
	"encoding/xml"
	"path/filepath"
	"strings"
)

// --- NCX XML decoding structs (EPUB 2) ---

// ncxDocument represents the root <ncx> element of an NCX file.
type ncxDocument struct {
	XMLName xml.Name  `xml:"ncx"`
	NavMap  ncxNavMap `xml:"navMap"`
}

// ncxNavMap represents the <navMap> element containing top-level navPoints.
type ncxNavMap struct {
	NavPoints []ncxNavPoint `xml:"navPoint"`
}

// ncxNavPoint represents a <navPoint> element which may contain nested navPoints.
type ncxNavPoint struct {
	ID       string        `xml:"id,attr"`
	Label    ncxNavLabel   `xml:"navLabel"`
	Content  ncxContent    `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// ncxNavLabel represents the <navLabel> element containing the display text.
type ncxNavLabel struct {
	Text string `xml:"text"`
}

// ncxContent represents the <content> element with its src attribute.
type ncxContent struct {
	Src string `xml:"src,attr"`
}

// ncxEntries implements the legacy-TOC resolution tier (EPUB 2 toc.ncx).
// Returns nil when no NCX file exists or it parses to nothing.
func ncxEntries(pkg *Package) []NavEntry {
	ncxRel := findNCX(pkg)
	if ncxRel == "" {
		return nil
	}

	data, err := pkg.readContent(ncxRel)
	if err != nil {
		return nil
	}

	data = preprocessHTMLEntities(data)

	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var entries []NavEntry
	flattenNavPoints(doc.NavMap.NavPoints, ncxRel, &entries)
	return entries
}

// findNCX returns the base-dir-relative path of the NCX file: the manifest
// item named by the spine toc attribute, or the well-known toc.ncx.
func findNCX(pkg *Package) string {
	if pkg.spineTocID != "" {
		if mi, ok := pkg.manifestByID[pkg.spineTocID]; ok {
			return mi.Href
		}
	}
	if fileExists(filepath.Join(pkg.BaseDir, "toc.ncx")) {
		return "toc.ncx"
	}
	return ""
}

// flattenNavPoints converts navPoints (including nested levels) into a flat
// entry sequence in document order.
func flattenNavPoints(points []ncxNavPoint, ncxRel string, out *[]NavEntry) {
	for _, np := range points {
		src := strings.TrimSpace(np.Content.Src)
		if src != "" {
			if resolved := resolveRelativeHref(ncxRel, src); resolved != "" {
				file, frag := splitFragment(resolved)
				*out = append(*out, NavEntry{
					Title:          strings.TrimSpace(np.Label.Text),
					TargetPath:     file,
					TargetFragment: frag,
					Source:         SourceNCX,
				})
			}
		}
		flattenNavPoints(np.Children, ncxRel, out)
	}
}
