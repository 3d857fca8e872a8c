package epub

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// opfPackage represents the root <package> element of an OPF file.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
	Guide    opfGuide    `xml:"guide"`
}

// opfMetadata holds the raw metadata elements from the OPF file.
type opfMetadata struct {
	Titles     []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creators   []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Languages  []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ language"`
	Publishers []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Dates      []opfDCElement `xml:"http://purl.org/dc/elements/1.1/ date"`
	Metas      []opfMeta      `xml:"meta"`
}

// opfDCElement holds a Dublin Core element.
type opfDCElement struct {
	Value string `xml:",chardata"`
	ID    string `xml:"id,attr"`
}

// opfMeta represents a <meta> element in the OPF metadata.
// EPUB 2: <meta name="..." content="..."/>.
type opfMeta struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

// opfManifest wraps the <manifest> element.
type opfManifest struct {
	Items []opfManifestItem `xml:"item"`
}

// opfManifestItem represents a single <item> in the manifest.
type opfManifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// opfSpine wraps the <spine> element.
type opfSpine struct {
	Toc      string            `xml:"toc,attr"`
	ItemRefs []opfSpineItemRef `xml:"itemref"`
}

// opfSpineItemRef represents a single <itemref> in the spine.
type opfSpineItemRef struct {
	IDRef  string `xml:"idref,attr"`
	Linear string `xml:"linear,attr"`
}

// opfGuide wraps the <guide> element.
type opfGuide struct {
	References []opfGuideReference `xml:"reference"`
}

// opfGuideReference represents a single <reference> in the guide.
type opfGuideReference struct {
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
	Href  string `xml:"href,attr"`
}

// Package is the parsed package descriptor of one extracted EPUB tree.
// All relative paths inside it are slash-separated and resolved against
// BaseDir. A Package is immutable once built.
type Package struct {
	// Root is the extracted tree root the package was read from.
	Root string

	// BaseDir is the absolute directory containing the OPF file; every
	// manifest href resolves against it.
	BaseDir string

	// OPFPath is the absolute path of the package descriptor.
	OPFPath string

	// Version is the EPUB version from the package element ("2.0" when absent).
	Version string

	// Spine is the full linear reading order, including non-document items.
	Spine []SpineItem

	// Documents is the subset of Spine carrying chapter content
	// (XHTML/HTML media types), in spine order.
	Documents []SpineItem

	// Metadata is the extracted Dublin Core metadata.
	Metadata Metadata

	manifest       []manifestItem
	manifestByID   map[string]*manifestItem
	manifestByHref map[string]*manifestItem
	spineTocID     string
	guide          []guideReference
	metas          []opfMeta
}

// ReadPackage locates and parses the package descriptor under an extracted
// EPUB tree and returns the ordered spine with its manifest.
//
// A spine idref with no matching manifest entry, or unparsable descriptor
// XML, yields a wrapped ErrMalformedPackage.
func ReadPackage(root string) (*Package, error) {
	opfPath, err := LocatePackage(root)
	if err != nil {
		return nil, err
	}
	return readPackageFile(root, opfPath)
}

func readPackageFile(root, opfPath string) (*Package, error) {
	data, err := os.ReadFile(opfPath)
	if err != nil {
		return nil, fmt.Errorf("epub: read package descriptor: %w", err)
	}

	raw, err := parseOPF(data)
	if err != nil {
		return nil, err
	}

	pkg := &Package{
		Root:       root,
		BaseDir:    filepath.Dir(opfPath),
		OPFPath:    opfPath,
		Version:    raw.Version,
		Metadata:   extractMetadata(raw),
		spineTocID: raw.Spine.Toc,
		metas:      raw.Metadata.Metas,
	}

	pkg.manifest = make([]manifestItem, 0, len(raw.Manifest.Items))
	pkg.manifestByID = make(map[string]*manifestItem, len(raw.Manifest.Items))
	pkg.manifestByHref = make(map[string]*manifestItem, len(raw.Manifest.Items))
	for _, item := range raw.Manifest.Items {
		pkg.manifest = append(pkg.manifest, manifestItem{
			ID:         item.ID,
			Href:       item.Href,
			MediaType:  item.MediaType,
			Properties: item.Properties,
		})
	}
	for i := range pkg.manifest {
		mi := &pkg.manifest[i]
		pkg.manifestByID[mi.ID] = mi
		pkg.manifestByHref[mi.Href] = mi
	}

	pkg.Spine = make([]SpineItem, 0, len(raw.Spine.ItemRefs))
	for i, ref := range raw.Spine.ItemRefs {
		mi, ok := pkg.manifestByID[ref.IDRef]
		if !ok {
			return nil, fmt.Errorf("epub: spine idref %q has no manifest entry: %w", ref.IDRef, ErrMalformedPackage)
		}
		si := SpineItem{
			ID:        mi.ID,
			Path:      mi.Href,
			MediaType: mi.MediaType,
			Order:     i,
		}
		pkg.Spine = append(pkg.Spine, si)
		if isDocumentMediaType(si.MediaType) {
			pkg.Documents = append(pkg.Documents, si)
		}
	}

	for _, r := range raw.Guide.References {
		pkg.guide = append(pkg.guide, guideReference{Type: r.Type, Title: r.Title, Href: r.Href})
	}

	return pkg, nil
}

// parseOPF parses OPF file content into the raw package structure.
func parseOPF(data []byte) (*opfPackage, error) {
	data = preprocessHTMLEntities(data)
	data = stripBOM(data)

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("epub: parse package descriptor: %v: %w", err, ErrMalformedPackage)
	}

	if pkg.Version == "" {
		// Default to 2.0 if the version attribute is missing.
		pkg.Version = "2.0"
	}

	return &pkg, nil
}

// readContent reads a content file identified by a base-dir-relative path.
func (p *Package) readContent(rel string) ([]byte, error) {
	return readTreeFile(p.BaseDir, rel)
}
