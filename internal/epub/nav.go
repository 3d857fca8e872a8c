package epub

import (
	"bytes"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// navWellKnown lists nav document locations probed when the manifest does
// not declare one, relative to the package base directory. The item/
// variant covers the legacy layout that keeps content one directory deep.
var navWellKnown = []string{
	"nav.xhtml",
	"navigation-documents.xhtml",
	"item/navigation-documents.xhtml",
}

// navEntries implements the navigation-document resolution tier (EPUB 3).
// It returns the flattened toc entries of the nav document, or nil when no
// nav document exists or it yields nothing.
func navEntries(pkg *Package) []NavEntry {
	navRel := findNavDocument(pkg)
	if navRel == "" {
		return nil
	}

	data, err := pkg.readContent(navRel)
	if err != nil {
		return nil
	}

	return parseNavDocument(data, navRel)
}

// findNavDocument returns the base-dir-relative path of the nav document.
// The manifest item with properties="nav" wins; well-known filenames are
// probed as a fallback for packages that omit the property.
func findNavDocument(pkg *Package) string {
	for _, mi := range pkg.manifest {
		for _, prop := range strings.Fields(mi.Properties) {
			if prop == "nav" {
				return mi.Href
			}
		}
	}

	for _, rel := range navWellKnown {
		if fileExists(filepath.Join(pkg.BaseDir, filepath.FromSlash(rel))) {
			return rel
		}
	}

	return ""
}

// parseNavDocument parses an XHTML nav document and returns its toc list as
// a flat entry sequence in document order. Nested list levels are flattened;
// the chapter model here is flat and depth adds nothing.
func parseNavDocument(data []byte, navRel string) []NavEntry {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	var navNodes []*html.Node
	var findNavs func(*html.Node)
	findNavs = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "nav" {
			navNodes = append(navNodes, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findNavs(c)
		}
	}
	findNavs(doc)

	var tocNav *html.Node
	for _, nav := range navNodes {
		if hasEpubType(nav, "toc") {
			tocNav = nav
			break
		}
	}
	if tocNav == nil && len(navNodes) > 0 {
		// Fall back to the first nav element when none is typed.
		tocNav = navNodes[0]
	}
	if tocNav == nil {
		return nil
	}

	var entries []NavEntry
	collectAnchors(tocNav, func(href, text string) {
		resolved := resolveRelativeHref(navRel, href)
		if resolved == "" {
			return
		}
		file, frag := splitFragment(resolved)
		entries = append(entries, NavEntry{
			Title:          strings.TrimSpace(text),
			TargetPath:     file,
			TargetFragment: frag,
			Source:         SourceNav,
		})
	})

	return entries
}

// collectAnchors walks the subtree in document order and invokes fn for
// every <a> element carrying an href.
func collectAnchors(n *html.Node, fn func(href, text string)) {
	if n.Type == html.ElementNode && n.Data == "a" {
		if href := getAttr(n, "href"); href != "" {
			fn(href, nodeTextContent(n))
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectAnchors(c, fn)
	}
}

// hasEpubType checks whether n has an epub:type attribute containing the
// given token (space-separated token matching).
func hasEpubType(n *html.Node, typeName string) bool {
	val := getAttr(n, "epub:type")
	for _, t := range strings.Fields(val) {
		if t == typeName {
			return true
		}
	}
	return false
}

// getAttr returns the value of the attribute with the given key on n.
func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// nodeTextContent recursively collects all text content within a node.
func nodeTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeTextContent(c))
	}
	return sb.String()
}
