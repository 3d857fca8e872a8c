package extract

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/nut1414/chapterize/internal/epub"
)

// chunkRecords splits oversized records into part files. Records within the
// tolerance pass through unchanged, as do records that share a chapter folder
// with sibling subchapters, which are already marker-sized units. A flat
// record splits into _partN files; a folder's lone record splits into
// numbered "[N] ..." files, so chunks look like subchapters. Titles get
// " - Part N" suffixes either way.
func chunkRecords(records []epub.OutputRecord, chunkSize int) []epub.OutputRecord {
	perFolder := make(map[string]int, len(records))
	for _, rec := range records {
		perFolder[path.Dir(rec.RelativeFilename)]++
	}

	out := make([]epub.OutputRecord, 0, len(records))
	for _, rec := range records {
		dir := path.Dir(rec.RelativeFilename)
		if dir != "." && perFolder[dir] > 1 {
			out = append(out, rec)
			continue
		}

		parts := splitOversized(rec.Text, chunkSize)
		if len(parts) == 1 {
			out = append(out, rec)
			continue
		}

		for i, part := range parts {
			chunk := rec
			chunk.Title = fmt.Sprintf("%s - Part %d", rec.Title, i+1)
			chunk.Text = part
			if dir != "." {
				chunk.SubchapterIndex = i + 1
				chunk.RelativeFilename = path.Join(dir, fmt.Sprintf("[%d] %s.txt", i+1, dir))
			} else {
				stem := strings.TrimSuffix(rec.RelativeFilename, ".txt")
				chunk.RelativeFilename = fmt.Sprintf("%s_part%d.txt", stem, i+1)
			}
			out = append(out, chunk)
		}
	}

	return out
}

// splitOversized packs paragraphs into chunks of roughly chunkSize
// characters. Text within chunkTolerance of the limit stays whole, so a
// chapter slightly over the limit is not split into a tiny tail. A single
// paragraph longer than the limit becomes its own oversized chunk; paragraph
// boundaries are never broken.
func splitOversized(text string, chunkSize int) []string {
	limit := int(float64(chunkSize) * chunkTolerance)
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, para := range paragraphs {
		pl := utf8.RuneCountInString(para)
		if curLen > 0 && curLen+pl+2 > chunkSize {
			flush()
		}
		if curLen > 0 {
			cur.WriteString("\n\n")
			curLen += 2
		}
		cur.WriteString(para)
		curLen += pl
	}
	flush()

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
