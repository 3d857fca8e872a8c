package epub

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// maxContentSize is the maximum size read from a single content file.
// Guards against runaway files in hand-edited trees. 256 MB.
const maxContentSize int64 = 256 * 1024 * 1024

// entityNameToNumeric maps lowercase HTML entity names to their XML numeric
// character references. encoding/xml does not recognise HTML named entities,
// so we convert them before parsing OPF/NCX files.
var entityNameToNumeric = map[string][]byte{
	"nbsp": []byte("&#160;"), "mdash": []byte("&#8212;"), "ndash": []byte("&#8211;"),
	"hellip": []byte("&#8230;"),
	"lsquo": []byte("&#8216;"), "rsquo": []byte("&#8217;"),
	"ldquo": []byte("&#8220;"), "rdquo": []byte("&#8221;"),
	"copy": []byte("&#169;"), "reg": []byte("&#174;"), "trade": []byte("&#8482;"),
	"bull": []byte("&#8226;"), "middot": []byte("&#183;"),
	"eacute": []byte("&#233;"), "egrave": []byte("&#232;"),
	"ecirc": []byte("&#234;"), "euml": []byte("&#235;"),
	"aacute": []byte("&#225;"), "agrave": []byte("&#224;"),
	"acirc": []byte("&#226;"), "auml": []byte("&#228;"),
	"oacute": []byte("&#243;"), "ograve": []byte("&#242;"),
	"ocirc": []byte("&#244;"), "ouml": []byte("&#246;"),
	"uacute": []byte("&#250;"), "ugrave": []byte("&#249;"),
	"ucirc": []byte("&#251;"), "uuml": []byte("&#252;"),
	"ntilde": []byte("&#241;"), "ccedil": []byte("&#231;"),
	"times": []byte("&#215;"), "divide": []byte("&#247;"),
	"deg": []byte("&#176;"), "para": []byte("&#182;"), "sect": []byte("&#167;"),
	"laquo": []byte("&#171;"), "raquo": []byte("&#187;"),
}

// htmlEntityPattern matches common HTML named entities case-insensitively.
var htmlEntityPattern = regexp.MustCompile(
	`(?i)&(nbsp|mdash|ndash|hellip|lsquo|rsquo|ldquo|rdquo|copy|reg|trade|bull|middot|` +
		`eacute|egrave|ecirc|euml|aacute|agrave|acirc|auml|` +
		`oacute|ograve|ocirc|ouml|uacute|ugrave|ucirc|uuml|ntilde|ccedil|` +
		`times|divide|deg|para|sect|laquo|raquo);`)

// preprocessHTMLEntities replaces common HTML named entities with their
// numeric character references so that encoding/xml can parse the data.
// The matching is case-insensitive to handle non-standard ePub content.
func preprocessHTMLEntities(data []byte) []byte {
	return htmlEntityPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := strings.ToLower(string(match[1 : len(match)-1]))
		if replacement, ok := entityNameToNumeric[name]; ok {
			return replacement
		}
		return match
	})
}

// stripBOM removes a leading UTF-8 BOM (0xEF 0xBB 0xBF) from data, if present.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// readTreeFile reads a file identified by its slash-separated path relative
// to the package base directory. A leading UTF-8 BOM is stripped.
func readTreeFile(baseDir, rel string) ([]byte, error) {
	fp := filepath.Join(baseDir, filepath.FromSlash(rel))
	info, err := os.Stat(fp)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxContentSize {
		return nil, errTooLarge(rel)
	}
	data, err := os.ReadFile(fp)
	if err != nil {
		return nil, err
	}
	return stripBOM(data), nil
}

type errTooLarge string

func (e errTooLarge) Error() string { return "epub: content file too large: " + string(e) }

// resolveRelativeHref resolves href relative to the directory of basePath.
// Both are slash-separated paths relative to the package base directory.
// The result is cleaned and validated to stay within the tree; an empty
// string is returned for absolute hrefs or paths escaping the root.
func resolveRelativeHref(basePath, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "/") {
		return ""
	}
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	joined := path.Join(path.Dir(basePath), href)
	cleaned := path.Clean(joined)
	if !isSafeRelPath(cleaned) {
		return ""
	}
	return cleaned
}

// isSafeRelPath checks whether p is a relative path that does not escape
// the tree root via path traversal.
func isSafeRelPath(p string) bool {
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") {
		return false
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}

// splitFragment splits an href into its file part and fragment part.
func splitFragment(href string) (file, fragment string) {
	if idx := strings.IndexByte(href, '#'); idx >= 0 {
		return href[:idx], href[idx+1:]
	}
	return href, ""
}

// isDocumentMediaType reports whether a media type denotes a spine content
// document that carries chapter text.
func isDocumentMediaType(mediaType string) bool {
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "application/xhtml+xml", "text/html":
		return true
	}
	return false
}

// isImageMediaType reports whether the media type starts with "image/".
func isImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
