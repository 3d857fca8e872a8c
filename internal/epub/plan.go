package epub

import (
	"fmt"
	"path"
	"strings"
)

// filenameSanitizer replaces the characters that are invalid in filenames on
// at least one supported platform.
var filenameSanitizer = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// maxFilenameRunes caps the sanitized title length so the full path stays
// well under common filesystem limits.
const maxFilenameRunes = 100

// SanitizeFilename makes a chapter title safe for use as a filename
// component: invalid characters become underscores, whitespace is collapsed,
// trailing dots and spaces are trimmed, and the result is capped at
// maxFilenameRunes. An empty result becomes "untitled".
func SanitizeFilename(name string) string {
	name = filenameSanitizer.Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	name = strings.Trim(name, ". ")
	if runes := []rune(name); len(runes) > maxFilenameRunes {
		name = strings.Trim(string(runes[:maxFilenameRunes]), ". ")
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// PlanOutputs maps extracted chapters to output records with deterministic
// relative filenames. In single-file mode each chapter becomes
// Chapter_NN_Title.txt. In subchapter mode every chapter becomes a folder of
// numbered files; a chapter that did not split is the folder's lone
// "[1] ..." file.
func PlanOutputs(chapters []ChapterText, subchapterMode bool) []OutputRecord {
	records := make([]OutputRecord, 0, len(chapters))

	for _, ch := range chapters {
		base := fmt.Sprintf("Chapter_%02d_%s", ch.Index, SanitizeFilename(ch.Title))

		if subchapterMode && len(ch.Subchapters) > 0 {
			for _, sub := range ch.Subchapters {
				title := ch.Title
				if len(ch.Subchapters) > 1 {
					title = fmt.Sprintf("%s (%d)", ch.Title, sub.LocalIndex)
				}
				records = append(records, OutputRecord{
					ChapterIndex:     ch.Index,
					SubchapterIndex:  sub.LocalIndex,
					Title:            title,
					Text:             sub.Text,
					RelativeFilename: path.Join(base, fmt.Sprintf("[%d] %s.txt", sub.LocalIndex, base)),
				})
			}
			continue
		}

		records = append(records, OutputRecord{
			ChapterIndex:     ch.Index,
			Title:            ch.Title,
			Text:             ch.Text,
			RelativeFilename: base + ".txt",
		})
	}

	return records
}
