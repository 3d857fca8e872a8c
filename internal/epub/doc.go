// Package epub resolves chapter structure and extracts plain text from an
// extracted EPUB 2/3 tree on disk.
//
// The entry point is [ReadPackage], which locates and parses the package
// descriptor (OPF) under a tree root and returns a [Package] carrying the
// spine and manifest. [Resolve] then reconciles the competing sources of
// chapter structure (nav document, NCX, embedded table-of-contents links,
// raw spine order) into one authoritative, 1-indexed chapter list:
//
//	pkg, err := epub.ReadPackage(root)
//	if err != nil {
//	    return err
//	}
//	chapters, err := epub.Resolve(pkg)
//
// Each chapter's content span is converted to plain text with
// [ExtractChapter], optionally divided at numbered markers with
// [SplitSubchapters], and mapped to deterministic output filenames with
// [PlanOutputs]. The package never writes files itself; callers materialise
// the returned [OutputRecord] sequence.
//
// # Error Handling
//
// Sentinel errors cover the failure modes that abort a single EPUB:
//   - [ErrPackageNotFound] – no OPF descriptor under the tree root
//   - [ErrMalformedPackage] – unparsable OPF, or a spine idref with no
//     matching manifest entry
//   - [ErrUnresolvableChapter] – no resolution tier produced a chapter list
//   - [ErrDRMProtected] – the tree carries a DRM encryption descriptor
//
// Unreadable or malformed content files never abort a run; the affected
// chapter degrades to best-effort text and a warning is recorded.
package epub
