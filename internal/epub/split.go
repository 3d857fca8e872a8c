package epub

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// subchapterMarkerPattern matches candidate subchapter markers: an ASCII or
// full-width integer at the start of a line or after whitespace, followed by
// a dot or standing alone at end of line. Japanese novels commonly number
// scene breaks with a bare full-width digit on its own line.
var subchapterMarkerPattern = regexp.MustCompile(`(?m)(?:^|[\s　])([0-9０-９]+)(?:[.．]|[ \t　]*$)`)

// maxSubchapterMarker bounds the numbers treated as markers. Larger integers
// in running text (years, page counts) are never subchapter numbers.
const maxSubchapterMarker = 50

// SplitSubchapters divides a chapter's text into numbered subchapters.
//
// Markers are accepted only as a strictly increasing sequence starting at 1;
// the first out-of-sequence marker terminates the scan and the remaining
// text stays attached to the last accepted subchapter. Text before marker 1
// belongs to no subchapter and is discarded. When no marker qualifies the
// text is returned unsplit as a single subchapter. Every subchapter begins
// at its own marker, so splitting is idempotent.
func SplitSubchapters(parentIndex int, text string) []Subchapter {
	matches := subchapterMarkerPattern.FindAllStringSubmatchIndex(text, -1)

	var starts []int
	for _, m := range matches {
		n, ok := markerValue(text[m[2]:m[3]])
		if !ok {
			continue
		}
		if len(starts) == 0 {
			if n == 1 {
				starts = append(starts, m[2])
			}
			continue
		}
		if n != len(starts)+1 {
			break
		}
		starts = append(starts, m[2])
	}

	if len(starts) == 0 {
		return []Subchapter{{
			ParentIndex: parentIndex,
			LocalIndex:  1,
			Text:        strings.TrimSpace(text),
		}}
	}

	subs := make([]Subchapter, 0, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		subs = append(subs, Subchapter{
			ParentIndex: parentIndex,
			LocalIndex:  i + 1,
			Text:        strings.TrimSpace(text[start:end]),
		})
	}
	return subs
}

// markerValue parses a candidate marker, folding full-width digits to ASCII.
// Numbers above maxSubchapterMarker are rejected.
func markerValue(s string) (int, bool) {
	n, err := strconv.Atoi(width.Fold.String(s))
	if err != nil || n < 1 || n > maxSubchapterMarker {
		return 0, false
	}
	return n, true
}
