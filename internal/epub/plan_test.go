package epub

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain Title", "Plain Title"},
		{`a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"  spaced   out  ", "spaced out"},
		{"trailing dots...", "trailing dots"},
		{"", "untitled"},
		{"???", "___"},
		{" . . ", "untitled"},
		{"第一章　出会い", "第一章　出会い"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename_CapsLength(t *testing.T) {
	long := strings.Repeat("あ", 250)
	got := SanitizeFilename(long)
	if n := len([]rune(got)); n > 100 {
		t.Errorf("sanitized length = %d runes, want <= 100", n)
	}
}

func TestPlanOutputs_SingleFileMode(t *testing.T) {
	chapters := []ChapterText{
		{Chapter: Chapter{Index: 1, Title: "Opening"}, Text: "first"},
		{Chapter: Chapter{Index: 2, Title: "The End?"}, Text: "second"},
	}

	records := PlanOutputs(chapters, false)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].RelativeFilename != "Chapter_01_Opening.txt" {
		t.Errorf("records[0].RelativeFilename = %q, want %q", records[0].RelativeFilename, "Chapter_01_Opening.txt")
	}
	if records[1].RelativeFilename != "Chapter_02_The End_.txt" {
		t.Errorf("records[1].RelativeFilename = %q, want %q", records[1].RelativeFilename, "Chapter_02_The End_.txt")
	}
	if records[0].SubchapterIndex != 0 {
		t.Errorf("records[0].SubchapterIndex = %d, want 0", records[0].SubchapterIndex)
	}
}

func TestPlanOutputs_SubchapterFolders(t *testing.T) {
	chapters := []ChapterText{
		{
			Chapter: Chapter{Index: 1, Title: "Split"},
			Text:    "whole",
			Subchapters: []Subchapter{
				{ParentIndex: 1, LocalIndex: 1, Text: "1. a"},
				{ParentIndex: 1, LocalIndex: 2, Text: "2. b"},
			},
		},
		{
			Chapter: Chapter{Index: 2, Title: "Unsplit"},
			Text:    "solo",
			Subchapters: []Subchapter{
				{ParentIndex: 2, LocalIndex: 1, Text: "solo"},
			},
		},
	}

	records := PlanOutputs(chapters, true)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	want0 := "Chapter_01_Split/[1] Chapter_01_Split.txt"
	if records[0].RelativeFilename != want0 {
		t.Errorf("records[0].RelativeFilename = %q, want %q", records[0].RelativeFilename, want0)
	}
	if records[1].SubchapterIndex != 2 {
		t.Errorf("records[1].SubchapterIndex = %d, want 2", records[1].SubchapterIndex)
	}

	// A chapter that did not split still gets its folder, holding a lone
	// numbered file with the plain chapter title.
	want2 := "Chapter_02_Unsplit/[1] Chapter_02_Unsplit.txt"
	if records[2].RelativeFilename != want2 {
		t.Errorf("records[2].RelativeFilename = %q, want %q", records[2].RelativeFilename, want2)
	}
	if records[2].Title != "Unsplit" {
		t.Errorf("records[2].Title = %q, want %q", records[2].Title, "Unsplit")
	}
	if records[2].SubchapterIndex != 1 {
		t.Errorf("records[2].SubchapterIndex = %d, want 1", records[2].SubchapterIndex)
	}
	if records[2].Text != "solo" {
		t.Errorf("records[2].Text = %q, want %q", records[2].Text, "solo")
	}
}

func TestPlanOutputs_DeterministicOrdering(t *testing.T) {
	chapters := []ChapterText{
		{Chapter: Chapter{Index: 1, Title: "A"}, Text: "a"},
		{Chapter: Chapter{Index: 2, Title: "B"}, Text: "b"},
		{Chapter: Chapter{Index: 3, Title: "C"}, Text: "c"},
	}

	first := PlanOutputs(chapters, false)
	second := PlanOutputs(chapters, false)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("records[%d] differ between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
