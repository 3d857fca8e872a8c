package epub

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// FuriganaMode controls how ruby annotations (furigana readings over base
// text) are rendered in extracted plain text.
type FuriganaMode int

const (
	// FuriganaOmit drops the reading and keeps only the base text.
	FuriganaOmit FuriganaMode = iota

	// FuriganaInline emits the reading in full-width parentheses directly
	// after the base text, e.g. 漢字（かんじ）.
	FuriganaInline
)

// blockBreaks maps element tags to the line break emitted when the element
// closes. Paragraphs and headings get a blank line; other block-level
// containers get a plain newline.
var blockBreaks = map[atom.Atom]string{
	atom.P:  "\n\n",
	atom.H1: "\n\n", atom.H2: "\n\n", atom.H3: "\n\n",
	atom.H4: "\n\n", atom.H5: "\n\n", atom.H6: "\n\n",
	atom.Blockquote: "\n\n",
	atom.Div:        "\n",
	atom.Section:    "\n",
	atom.Li:         "\n",
	atom.Tr:         "\n",
}

// skipElementTags are elements whose entire content is non-prose and is
// never emitted.
var skipElementTags = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Title:    true,
	atom.Noscript: true,
	atom.Iframe:   true,
	atom.Svg:      true,
}

// ExtractChapter extracts the plain text of a chapter by concatenating its
// content refs in span order. Unreadable or undecodable documents degrade to
// a warning rather than failing the chapter; the returned warnings hold one
// wrapped ErrContentDecode per skipped ref.
func ExtractChapter(pkg *Package, ch Chapter, mode FuriganaMode) (string, []error) {
	var sb strings.Builder
	var warnings []error

	for _, ref := range ch.Refs {
		data, err := pkg.readContent(ref.Item.Path)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("chapter %d: %s: %v: %w", ch.Index, ref.Item.Path, err, ErrContentDecode))
			continue
		}
		text := extractText(data, ref.StartFragment, ref.EndFragment, mode)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	return normalizeText(sb.String()), warnings
}

// extractText runs a single tokenizer pass over an XHTML document and
// returns its visible text. When startFrag is non-empty, emission begins at
// the element carrying that id (inclusive); when endFrag is non-empty,
// emission stops at the element carrying that id (exclusive).
func extractText(data []byte, startFrag, endFrag string, mode FuriganaMode) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	capturing := startFrag == ""
	skipDepth := 0
	rtDepth := 0
	rpDepth := 0
	var sb strings.Builder

loop:
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			// EOF or malformed markup: either way, emit what we have.
			break loop

		case html.StartTagToken, html.SelfClosingTagToken:
			selfClosing := tt == html.SelfClosingTagToken
			tn, hasAttr := tokenizer.TagName()
			a := atom.Lookup(tn)
			id := tokenID(tokenizer, hasAttr)

			if !capturing {
				if id != "" && id == startFrag {
					capturing = true
				}
				continue
			}
			if endFrag != "" && id == endFrag {
				break loop
			}

			switch {
			case a == atom.Br:
				sb.WriteByte('\n')
			case selfClosing:
				// No content follows; nothing to track.
			case skipElementTags[a]:
				skipDepth++
			case a == atom.Rt:
				rtDepth++
				if mode == FuriganaInline {
					sb.WriteString("（")
				}
			case a == atom.Rp:
				rpDepth++
			}

		case html.EndTagToken:
			if !capturing {
				continue
			}
			tn, _ := tokenizer.TagName()
			a := atom.Lookup(tn)
			switch {
			case skipElementTags[a]:
				if skipDepth > 0 {
					skipDepth--
				}
			case a == atom.Rt:
				if rtDepth > 0 {
					rtDepth--
					if mode == FuriganaInline {
						sb.WriteString("）")
					}
				}
			case a == atom.Rp:
				if rpDepth > 0 {
					rpDepth--
				}
			default:
				if brk, ok := blockBreaks[a]; ok {
					sb.WriteString(brk)
				}
			}

		case html.TextToken:
			if !capturing || skipDepth > 0 || rpDepth > 0 {
				continue
			}
			if rtDepth > 0 && mode == FuriganaOmit {
				continue
			}
			writeCollapsed(&sb, string(tokenizer.Text()))
		}
	}

	return sb.String()
}

// tokenID scans the current tag's attributes for an id and returns its value.
func tokenID(tokenizer *html.Tokenizer, hasAttr bool) string {
	for hasAttr {
		key, val, more := tokenizer.TagAttr()
		if string(key) == "id" {
			return string(val)
		}
		hasAttr = more
	}
	return ""
}

// writeCollapsed appends a text token with internal whitespace runs collapsed
// to single spaces. Leading/trailing whitespace in the token becomes a single
// separating space when the output does not already end in whitespace.
func writeCollapsed(sb *strings.Builder, text string) {
	collapsed := strings.Join(strings.Fields(text), " ")
	if collapsed == "" {
		return
	}
	if startsWithSpace(text) && needsSeparator(sb) {
		sb.WriteByte(' ')
	}
	sb.WriteString(collapsed)
	if endsWithSpace(text) {
		sb.WriteByte(' ')
	}
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

func endsWithSpace(s string) bool {
	if s == "" {
		return false
	}
	rs := []rune(s)
	return unicode.IsSpace(rs[len(rs)-1])
}

// needsSeparator reports whether the builder's last byte is non-whitespace,
// meaning a separating space would not be redundant.
func needsSeparator(sb *strings.Builder) bool {
	s := sb.String()
	if s == "" {
		return false
	}
	return !unicode.IsSpace(rune(s[len(s)-1]))
}

var (
	lineTrailingSpacePattern = regexp.MustCompile(`[ \t]+\n`)
	excessNewlinePattern     = regexp.MustCompile(`\n{3,}`)
)

// normalizeText strips trailing spaces from lines, caps consecutive blank
// lines at one, and trims surrounding whitespace.
func normalizeText(s string) string {
	s = lineTrailingSpacePattern.ReplaceAllString(s, "\n")
	s = excessNewlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
