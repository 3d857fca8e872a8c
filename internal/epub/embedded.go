package epub

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// chapterLinkPattern matches anchor labels that read like chapter headings:
// Japanese 第N章 forms, bare N章, "Chapter N", and the usual prologue/
// epilogue/afterword markers.
var chapterLinkPattern = regexp.MustCompile(
	`第[一二三四五六七八九十百\d]+章|[一二三四五六七八九十\d]+章|(?i:chapter\s*\d+)|プロローグ|エピローグ|あとがき|序\s*章|終\s*章`)

// anchorGatePattern is a cheap pre-check on raw bytes for documents worth a
// full parse: an anchor whose label looks chapter-like.
var anchorGatePattern = regexp.MustCompile(
	`(?is)<a[^>]*href="[^"]*"[^>]*>[^<]*(?:第[一二三四五六七八九十百\d]+章|chapter\s*\d+|プロローグ|エピローグ|あとがき|章)`)

// minEmbeddedLinks is the number of chapter-like anchors a document must
// carry before it is treated as an embedded table of contents.
const minEmbeddedLinks = 3

// embeddedEntries implements the embedded-TOC resolution tier: a heuristic
// scan of spine content for a page of chapter links, used by EPUBs that ship
// neither a nav document nor an NCX.
func embeddedEntries(pkg *Package) []NavEntry {
	var entries []NavEntry
	seen := make(map[[2]string]bool)

	for _, d := range pkg.Documents {
		data, err := pkg.readContent(d.Path)
		if err != nil {
			continue
		}
		if !looksLikeTOC(data) {
			continue
		}

		links := extractChapterLinks(data, d.Path)
		if len(links) == 0 {
			continue
		}

		// Mark the contents page itself so it never lands in a chapter span.
		entries = append(entries, NavEntry{
			Title:      "CONTENTS",
			TargetPath: d.Path,
			Source:     SourceEmbedded,
		})

		for _, e := range links {
			key := [2]string{e.TargetPath, e.TargetFragment}
			if seen[key] {
				continue
			}
			seen[key] = true
			entries = append(entries, e)
		}
	}

	return entries
}

// looksLikeTOC reports whether a document plausibly is an embedded table of
// contents: an explicit CONTENTS marker, or at least minEmbeddedLinks
// chapter-like anchors.
func looksLikeTOC(data []byte) bool {
	if bytes.Contains(data, []byte("CONTENTS")) {
		return true
	}
	return len(anchorGatePattern.FindAll(data, minEmbeddedLinks)) >= minEmbeddedLinks
}

// extractChapterLinks parses a document and returns entries for every anchor
// whose label matches a chapter pattern and is not front/back-matter noise.
func extractChapterLinks(data []byte, docRel string) []NavEntry {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	var entries []NavEntry
	collectAnchors(doc, func(href, text string) {
		label := strings.TrimSpace(text)
		if label == "" || isNoiseTitle(label) || !chapterLinkPattern.MatchString(label) {
			return
		}
		resolved := resolveRelativeHref(docRel, href)
		if resolved == "" {
			return
		}
		file, frag := splitFragment(resolved)
		entries = append(entries, NavEntry{
			Title:          label,
			TargetPath:     file,
			TargetFragment: frag,
			Source:         SourceEmbedded,
		})
	})

	return entries
}
