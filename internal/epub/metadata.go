package epub

import "strings"

// extractMetadata converts raw OPF metadata into the public Metadata struct.
// Only the fields surfaced in extraction output are kept: primary title,
// creator names, first language, publisher, and date.
func extractMetadata(opf *opfPackage) Metadata {
	var md Metadata
	om := &opf.Metadata

	for _, t := range om.Titles {
		if v := strings.TrimSpace(t.Value); v != "" {
			md.Title = v
			break
		}
	}

	for _, c := range om.Creators {
		if v := strings.TrimSpace(c.Value); v != "" {
			md.Authors = append(md.Authors, v)
		}
	}

	for _, l := range om.Languages {
		if v := strings.TrimSpace(l.Value); v != "" {
			md.Language = v
			break
		}
	}

	for _, p := range om.Publishers {
		if v := strings.TrimSpace(p.Value); v != "" {
			md.Publisher = v
			break
		}
	}

	for _, d := range om.Dates {
		if v := strings.TrimSpace(d.Value); v != "" {
			md.Date = v
			break
		}
	}

	return md
}
