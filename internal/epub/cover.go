package epub

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FindCover detects the cover image of a package using multiple strategies,
// tried in priority order:
//  1. ePub 3 manifest item with properties="cover-image"
//  2. ePub 2 <meta name="cover" content="ID"/> → manifest lookup
//  3. <guide> reference type="cover" → parse XHTML for first <img>
//  4. Manifest item whose ID or href contains "cover" with image/* media-type
//  5. First spine item's XHTML → first <img>
//
// Returns ErrNoCover if no strategy succeeds.
func FindCover(pkg *Package) (CoverImage, error) {
	strategies := []func(*Package) *manifestItem{
		coverFromManifestProperties,
		coverFromMetaCover,
		coverFromGuide,
		coverFromManifestHeuristic,
		coverFromFirstSpine,
	}

	for _, strategy := range strategies {
		if item := strategy(pkg); item != nil {
			p := filepath.Join(pkg.BaseDir, filepath.FromSlash(item.Href))
			if !fileExists(p) {
				continue
			}
			return CoverImage{Path: p, MediaType: item.MediaType}, nil
		}
	}

	return CoverImage{}, ErrNoCover
}

// coverFromManifestProperties searches the manifest for an item whose
// Properties field contains "cover-image" (ePub 3), in document order.
func coverFromManifestProperties(pkg *Package) *manifestItem {
	for i := range pkg.manifest {
		item := &pkg.manifest[i]
		if slices.Contains(strings.Fields(item.Properties), "cover-image") {
			return item
		}
	}
	return nil
}

// coverFromMetaCover looks for <meta name="cover" content="ID"/> in the OPF
// metadata and resolves the ID through the manifest (ePub 2). A non-image
// target is treated as an XHTML cover page and its first <img> is extracted.
func coverFromMetaCover(pkg *Package) *manifestItem {
	for _, m := range pkg.metas {
		if !strings.EqualFold(m.Name, "cover") || m.Content == "" {
			continue
		}
		item, ok := pkg.manifestByID[m.Content]
		if !ok {
			continue
		}
		if isImageMediaType(item.MediaType) {
			return item
		}
		if img := imageFromCoverPage(pkg, item.Href); img != nil {
			return img
		}
	}
	return nil
}

// coverFromGuide searches the <guide> for a reference with type="cover" and
// extracts the first <img> of the referenced XHTML page.
func coverFromGuide(pkg *Package) *manifestItem {
	for _, ref := range pkg.guide {
		if !strings.EqualFold(ref.Type, "cover") {
			continue
		}
		href, _ := splitFragment(ref.Href)
		if img := imageFromCoverPage(pkg, href); img != nil {
			return img
		}
	}
	return nil
}

// coverFromManifestHeuristic searches all manifest items for one whose ID or
// href contains "cover" (case-insensitive) and has an image/* media-type,
// in document order.
func coverFromManifestHeuristic(pkg *Package) *manifestItem {
	for i := range pkg.manifest {
		item := &pkg.manifest[i]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		if containsFold(item.ID, "cover") || containsFold(item.Href, "cover") {
			return item
		}
	}
	return nil
}

// coverFromFirstSpine extracts the first <img> of the first spine document.
func coverFromFirstSpine(pkg *Package) *manifestItem {
	if len(pkg.Documents) == 0 {
		return nil
	}
	return imageFromCoverPage(pkg, pkg.Documents[0].Path)
}

// imageFromCoverPage reads an XHTML page and resolves its first image to a
// manifest item.
func imageFromCoverPage(pkg *Package, pageRel string) *manifestItem {
	data, err := pkg.readContent(pageRel)
	if err != nil {
		return nil
	}
	imgRel := findFirstImageInHTML(data, pageRel)
	if imgRel == "" {
		return nil
	}
	return resolveImageManifestItem(pkg, imgRel)
}

// resolveImageManifestItem resolves a base-dir-relative image path to a
// manifest item, falling back to case-insensitive href comparison.
func resolveImageManifestItem(pkg *Package, rel string) *manifestItem {
	if item, ok := pkg.manifestByHref[rel]; ok && isImageMediaType(item.MediaType) {
		return item
	}

	for i := range pkg.manifest {
		item := &pkg.manifest[i]
		if isImageMediaType(item.MediaType) && strings.EqualFold(item.Href, rel) {
			return item
		}
	}
	return nil
}

// findFirstImageInHTML returns the resolved base-dir-relative path of the
// first <img> (or SVG <image>) in the document, or "" when none is found.
// basePath is the document's own base-dir-relative path, used to resolve
// relative src attributes.
func findFirstImageInHTML(htmlData []byte, basePath string) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlData))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			a := atom.Lookup(tn)
			if a != atom.Img && a != atom.Image {
				continue
			}
			for hasAttr {
				key, val, more := tokenizer.TagAttr()
				k := string(key)
				match := k == "src"
				if a == atom.Image {
					match = k == "href" || k == "xlink:href"
				}
				if match && len(val) > 0 {
					return resolveRelativeHref(basePath, string(val))
				}
				hasAttr = more
			}
		}
	}
}
