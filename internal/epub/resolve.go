package epub

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// noiseTitles marks TOC entries that are front/back matter rather than
// chapters: cover pages, tables of contents, and colophons. Matching is a
// case-insensitive substring check on the entry title.
var noiseTitles = []string{"表紙", "目次", "奥付", "cover", "toc", "contents"}

// isNoiseTitle reports whether a TOC entry title denotes front/back matter.
func isNoiseTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, t := range noiseTitles {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

// Resolve produces the authoritative chapter list for a package.
//
// Structure sources are tried in strict priority order, first success wins:
// navigation document, legacy NCX, embedded table-of-contents links, raw
// spine order. A tier succeeds only when it yields at least one entry that
// resolves to a spine document; otherwise the resolver falls through to the
// next tier. The spine fallback always succeeds for a non-empty spine, so
// Resolve fails only with a wrapped ErrUnresolvableChapter when the package
// has no content documents at all.
func Resolve(pkg *Package) ([]Chapter, error) {
	tiers := []func(*Package) []NavEntry{
		navEntries,
		ncxEntries,
		embeddedEntries,
	}

	for _, tier := range tiers {
		entries := tier(pkg)
		if len(entries) == 0 {
			continue
		}
		if chapters, ok := buildChapters(pkg, entries); ok {
			return chapters, nil
		}
	}

	return spineFallback(pkg)
}

// boundary is a NavEntry resolved to a position in the document spine.
type boundary struct {
	docIndex int
	fragment string
	title    string
	source   SourceKind
	seq      int // original entry order, for stable sorting
}

// buildChapters converts structure-source entries into chapters with content
// spans. Returns false when no entry resolves to a spine document, which
// sends the resolver to the next tier.
func buildChapters(pkg *Package, entries []NavEntry) ([]Chapter, bool) {
	byPath := make(map[string]int, len(pkg.Documents))
	byName := make(map[string]int, len(pkg.Documents))
	for i, d := range pkg.Documents {
		byPath[d.Path] = i
		name := path.Base(d.Path)
		if _, ok := byName[name]; !ok {
			byName[name] = i
		}
	}

	excluded := make(map[int]bool)
	var bounds []boundary
	for seq, e := range entries {
		idx, ok := byPath[e.TargetPath]
		if !ok {
			idx, ok = byName[path.Base(e.TargetPath)]
		}
		if !ok {
			continue
		}
		if isNoiseTitle(e.Title) {
			// Front/back matter: not a chapter, and its whole-document
			// target is held out of every chapter span.
			if e.TargetFragment == "" {
				excluded[idx] = true
			}
			continue
		}
		bounds = append(bounds, boundary{
			docIndex: idx,
			fragment: e.TargetFragment,
			title:    e.Title,
			source:   e.Source,
			seq:      seq,
		})
	}
	if len(bounds) == 0 {
		return nil, false
	}

	// Sort by spine position; entries within the same document keep their
	// source order, which tracks fragment position in practice.
	sort.SliceStable(bounds, func(i, j int) bool {
		if bounds[i].docIndex != bounds[j].docIndex {
			return bounds[i].docIndex < bounds[j].docIndex
		}
		return bounds[i].seq < bounds[j].seq
	})

	// Entries resolving to the same target collapse into one chapter
	// boundary so that no zero-length chapter is produced.
	deduped := bounds[:0]
	for _, b := range bounds {
		if len(deduped) > 0 {
			last := deduped[len(deduped)-1]
			if last.docIndex == b.docIndex && last.fragment == b.fragment {
				continue
			}
		}
		deduped = append(deduped, b)
	}
	bounds = deduped

	// A chapter target always wins over a noise marking on the same file.
	for _, b := range bounds {
		delete(excluded, b.docIndex)
	}

	chapters := make([]Chapter, 0, len(bounds))
	for i, b := range bounds {
		endDoc := len(pkg.Documents)
		endFrag := ""
		if i+1 < len(bounds) {
			endDoc = bounds[i+1].docIndex
			endFrag = bounds[i+1].fragment
		}

		var refs []ContentRef

		// Uncovered spine documents before the first boundary attach to
		// the nearest chapter, which is the first one.
		if i == 0 {
			for d := 0; d < b.docIndex; d++ {
				if excluded[d] {
					continue
				}
				refs = append(refs, ContentRef{Item: pkg.Documents[d]})
			}
		}

		if b.docIndex == endDoc {
			// Chapter starts and ends inside the same document.
			refs = append(refs, ContentRef{
				Item:          pkg.Documents[b.docIndex],
				StartFragment: b.fragment,
				EndFragment:   endFrag,
			})
		} else {
			refs = append(refs, ContentRef{
				Item:          pkg.Documents[b.docIndex],
				StartFragment: b.fragment,
			})
			for d := b.docIndex + 1; d < endDoc; d++ {
				if excluded[d] {
					continue
				}
				refs = append(refs, ContentRef{Item: pkg.Documents[d]})
			}
			if endFrag != "" && endDoc < len(pkg.Documents) {
				// The next chapter starts mid-document; this chapter owns
				// the head of that document.
				refs = append(refs, ContentRef{
					Item:        pkg.Documents[endDoc],
					EndFragment: endFrag,
				})
			}
		}

		title := strings.TrimSpace(b.title)
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		chapters = append(chapters, Chapter{
			Index:  i + 1,
			Title:  title,
			Source: b.source,
			Refs:   refs,
		})
	}

	return chapters, true
}

// spineFallback produces one chapter per spine document, in spine order.
// Titles come from the document's first heading, or "Chapter N" when the
// document has none (or cannot be read).
func spineFallback(pkg *Package) ([]Chapter, error) {
	if len(pkg.Documents) == 0 {
		return nil, fmt.Errorf("epub: package %s has no content documents: %w", pkg.OPFPath, ErrUnresolvableChapter)
	}

	chapters := make([]Chapter, 0, len(pkg.Documents))
	for i, d := range pkg.Documents {
		title := ""
		if data, err := pkg.readContent(d.Path); err == nil {
			title = firstHeading(data)
		}
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		chapters = append(chapters, Chapter{
			Index:  i + 1,
			Title:  title,
			Source: SourceSpine,
			Refs:   []ContentRef{{Item: d}},
		})
	}
	return chapters, nil
}

// headingAtoms is the set of heading tags considered chapter-title sources.
var headingAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

// firstHeading returns the text of the first <h1>–<h6> element in the
// document, or "" when none carries text.
func firstHeading(data []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))
	depth := 0
	var buf strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if errors.Is(tokenizer.Err(), io.EOF) {
				return ""
			}
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if headingAtoms[atom.Lookup(tn)] {
				depth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if headingAtoms[atom.Lookup(tn)] && depth > 0 {
				if t := strings.TrimSpace(buf.String()); t != "" {
					return t
				}
				depth--
				buf.Reset()
			}
		case html.TextToken:
			if depth > 0 {
				buf.Write(tokenizer.Text())
			}
		}
	}
}
