package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nut1414/chapterize/internal/epub"
)

func TestSplitOversized_WithinToleranceStaysWhole(t *testing.T) {
	// 110 chars against a 100-char target: inside the 1.2x tolerance.
	text := strings.Repeat("a", 110)
	parts := splitOversized(text, 100)
	if len(parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(parts))
	}
}

func TestSplitOversized_PacksParagraphs(t *testing.T) {
	para := strings.Repeat("x", 40)
	text := strings.Join([]string{para, para, para, para, para, para}, "\n\n")

	parts := splitOversized(text, 100)
	if len(parts) < 2 {
		t.Fatalf("got %d parts, want at least 2", len(parts))
	}
	for i, p := range parts {
		if utf8.RuneCountInString(p) > 120 {
			t.Errorf("parts[%d] has %d runes, want <= 120", i, utf8.RuneCountInString(p))
		}
	}
	if got := strings.Join(parts, "\n\n"); got != text {
		t.Errorf("rejoined parts differ from input:\n%q\nvs\n%q", got, text)
	}
}

func TestSplitOversized_LongParagraphStaysUnbroken(t *testing.T) {
	long := strings.Repeat("y", 500)
	text := "short\n\n" + long + "\n\nshort"

	parts := splitOversized(text, 100)
	found := false
	for _, p := range parts {
		if strings.Contains(p, long) {
			found = true
		}
	}
	if !found {
		t.Error("the long paragraph was broken across parts")
	}
}

func TestChunkRecords(t *testing.T) {
	para := strings.Repeat("z", 80)
	records := []epub.OutputRecord{
		{ChapterIndex: 1, Title: "Long", Text: strings.Join([]string{para, para, para}, "\n\n"), RelativeFilename: "Chapter_01_Long.txt"},
		{ChapterIndex: 2, Title: "Short", Text: "tiny", RelativeFilename: "Chapter_02_Short.txt"},
	}

	out := chunkRecords(records, 100)
	if len(out) != 4 {
		t.Fatalf("got %d records, want 4", len(out))
	}
	if out[0].RelativeFilename != "Chapter_01_Long_part1.txt" {
		t.Errorf("out[0].RelativeFilename = %q, want %q", out[0].RelativeFilename, "Chapter_01_Long_part1.txt")
	}
	if out[0].Title != "Long - Part 1" {
		t.Errorf("out[0].Title = %q, want %q", out[0].Title, "Long - Part 1")
	}
	if out[3].RelativeFilename != "Chapter_02_Short.txt" {
		t.Errorf("out[3].RelativeFilename = %q, want unchanged short record", out[3].RelativeFilename)
	}
}

func TestChunkRecords_FolderRecordGetsNumberedFiles(t *testing.T) {
	para := strings.Repeat("z", 80)
	records := []epub.OutputRecord{
		{
			ChapterIndex:     1,
			SubchapterIndex:  1,
			Title:            "Solo",
			Text:             strings.Join([]string{para, para, para}, "\n\n"),
			RelativeFilename: "Chapter_01_Solo/[1] Chapter_01_Solo.txt",
		},
	}

	out := chunkRecords(records, 100)
	if len(out) != 3 {
		t.Fatalf("got %d records, want 3", len(out))
	}
	for i, rec := range out {
		want := "Chapter_01_Solo/[" + string(rune('1'+i)) + "] Chapter_01_Solo.txt"
		if rec.RelativeFilename != want {
			t.Errorf("out[%d].RelativeFilename = %q, want %q", i, rec.RelativeFilename, want)
		}
		if rec.SubchapterIndex != i+1 {
			t.Errorf("out[%d].SubchapterIndex = %d, want %d", i, rec.SubchapterIndex, i+1)
		}
	}
	if out[1].Title != "Solo - Part 2" {
		t.Errorf("out[1].Title = %q, want %q", out[1].Title, "Solo - Part 2")
	}
}

func TestChunkRecords_SubchapterSiblingsPassThrough(t *testing.T) {
	// Files sharing a chapter folder are marker-delimited subchapters and
	// are never re-chunked, even when oversized.
	long := strings.Repeat("w", 400)
	records := []epub.OutputRecord{
		{ChapterIndex: 1, SubchapterIndex: 1, Title: "Split (1)", Text: long, RelativeFilename: "Chapter_01_Split/[1] Chapter_01_Split.txt"},
		{ChapterIndex: 1, SubchapterIndex: 2, Title: "Split (2)", Text: "tiny", RelativeFilename: "Chapter_01_Split/[2] Chapter_01_Split.txt"},
	}

	out := chunkRecords(records, 100)
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	for i := range out {
		if out[i] != records[i] {
			t.Errorf("out[%d] = %+v, want unchanged %+v", i, out[i], records[i])
		}
	}
}
