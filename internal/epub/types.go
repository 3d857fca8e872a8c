package epub

// SpineItem is one entry of the package's linear reading order.
type SpineItem struct {
	// ID is the manifest item ID referenced by the spine entry.
	ID string

	// Path is the content file path relative to the package base directory,
	// slash-separated.
	Path string

	// MediaType is the MIME type of the referenced content file.
	MediaType string

	// Order is the position of this item in the full spine sequence.
	Order int
}

// SourceKind identifies which structure source produced a NavEntry.
type SourceKind int

const (
	// SourceNav is the EPUB 3 navigation document.
	SourceNav SourceKind = iota

	// SourceNCX is the EPUB 2 legacy toc.ncx file.
	SourceNCX

	// SourceEmbedded is a table-of-contents page found inside spine content.
	SourceEmbedded

	// SourceSpine is the raw spine-order fallback.
	SourceSpine
)

// String returns the human-readable name of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceNav:
		return "nav"
	case SourceNCX:
		return "ncx"
	case SourceEmbedded:
		return "embedded"
	case SourceSpine:
		return "spine"
	}
	return "unknown"
}

// NavEntry is a single chapter marker obtained from one structure source.
type NavEntry struct {
	// Title is the display text of the entry.
	Title string

	// TargetPath is the content file path relative to the package base
	// directory, with any fragment stripped.
	TargetPath string

	// TargetFragment is the in-document anchor identifying a sub-position
	// within the target file. Empty when the entry points at a whole file.
	TargetFragment string

	// Source records which resolution tier produced this entry.
	Source SourceKind
}

// ContentRef is one slice of a chapter's content span: a spine document,
// optionally bounded by start and end fragment anchors.
type ContentRef struct {
	Item          SpineItem
	StartFragment string
	EndFragment   string
}

// Chapter is one logical chapter with a 1-based contiguous index and the
// ordered content span covering it. A chapter may span several spine
// documents when chapter markers leave gaps.
type Chapter struct {
	Index  int
	Title  string
	Source SourceKind
	Refs   []ContentRef
}

// Subchapter is one numbered division of a chapter's text. When splitting
// finds no valid marker sequence, a chapter has exactly one subchapter
// equal to its own text.
type Subchapter struct {
	ParentIndex int
	LocalIndex  int
	Text        string
}

// OutputRecord describes one output file: its position in the chapter
// ordering, its text, and the relative filename the I/O layer should
// materialise it under.
type OutputRecord struct {
	ChapterIndex int

	// SubchapterIndex is the 1-based local index within the chapter, or 0
	// in single-file mode.
	SubchapterIndex int

	Title            string
	Text             string
	RelativeFilename string
}

// ChapterText pairs a resolved chapter with its extracted text and, in
// subchapter mode, its numbered divisions.
type ChapterText struct {
	Chapter
	Text        string
	Subchapters []Subchapter
}

// Metadata holds the package metadata used to annotate extraction output.
type Metadata struct {
	// Title is the primary dc:title value.
	Title string

	// Authors contains the dc:creator display names in document order.
	Authors []string

	// Language is the first dc:language value.
	Language string

	// Publisher is the dc:publisher value.
	Publisher string

	// Date is the dc:date value as a raw string.
	Date string
}

// CoverImage identifies the detected cover image inside the extracted tree.
type CoverImage struct {
	// Path is the absolute on-disk path of the image file.
	Path string

	// MediaType is the MIME type of the image (e.g., "image/jpeg").
	MediaType string
}

// manifestItem represents an entry in the OPF <manifest> element.
type manifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties string
}

// guideReference is the processed representation of a guide reference entry.
type guideReference struct {
	Type  string
	Title string
	Href  string
}
