package epub

import "errors"

// Sentinel errors returned by the epub package.
var (
	// ErrPackageNotFound indicates no package descriptor (.opf) was found
	// under the tree root after exhausting all search strategies.
	ErrPackageNotFound = errors.New("epub: package descriptor not found")

	// ErrMalformedPackage indicates the package descriptor could not be
	// parsed, or its spine references a manifest item that does not exist.
	ErrMalformedPackage = errors.New("epub: malformed package")

	// ErrUnresolvableChapter indicates no structure-resolution tier
	// (nav document, NCX, embedded TOC, spine fallback) produced a
	// chapter list for this package.
	ErrUnresolvableChapter = errors.New("epub: no resolvable chapter structure")

	// ErrContentDecode indicates a content file could not be read or
	// decoded. It degrades the affected chapter rather than aborting the
	// run; callers receive it as a warning.
	ErrContentDecode = errors.New("epub: content decode failure")

	// ErrDRMProtected indicates the EPUB is protected by DRM
	// (e.g., Adobe ADEPT, Apple FairPlay, Readium LCP) and cannot be read.
	ErrDRMProtected = errors.New("epub: file is DRM protected")

	// ErrNoCover indicates no cover image could be detected
	// using any of the supported strategies.
	ErrNoCover = errors.New("epub: no cover image found")
)
