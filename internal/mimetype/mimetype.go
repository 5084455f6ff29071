// Package mimetype implements the MIME detector and validator (spec.md
// §4.1): mapping a path/bytes pair to a canonical MIME string, and
// guarding the pipeline against out-of-scope formats.
package mimetype

import (
	"bytes"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/kreuzberg-go/kreuzberg/internal/kerr"
)

// Family is the supported MIME family a type belongs to (spec.md §4.1).
type Family string

const (
	FamilyText     Family = "text"
	FamilyDocument Family = "document"
	FamilyImage    Family = "image"
	FamilyArchive  Family = "archive"
	FamilyEmail    Family = "email"
	FamilyMarkup   Family = "markup"
)

// extensionTable maps a lower-cased extension (without the leading dot,
// multi-segment extensions like "tar.gz" included) to its canonical MIME
// type. Matching is case-insensitive.
var extensionTable = map[string]string{
	"txt":  "text/plain",
	"csv":  "text/csv",
	"rtf":  "text/rtf",
	"html": "text/html",
	"htm":  "text/html",
	"md":   "text/markdown",
	"markdown": "text/markdown",
	"rst":      "text/x-rst",
	"org":      "text/x-org",
	"opml":     "text/x-opml",
	"typ":      "text/x-typst",
	"fb2":      "application/x-fictionbook+xml",
	"dbk":      "application/docbook+xml",
	"docbook":  "application/docbook+xml",

	"pdf": "application/pdf",

	"doc":  "application/msword",
	"ppt":  "application/vnd.ms-powerpoint",
	"xls":  "application/vnd.ms-excel",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"odt":  "application/vnd.oasis.opendocument.text",

	"zip":    "application/zip",
	"tar":    "application/x-tar",
	"gz":     "application/gzip",
	"tar.gz": "application/x-gtar",
	"7z":     "application/x-7z-compressed",

	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"bmp":  "image/bmp",
	"gif":  "image/gif",
	"webp": "image/webp",
}

var familyByPrefix = map[string]Family{
	"text/":       FamilyText,
	"image/":      FamilyImage,
	"application/zip":              FamilyArchive,
	"application/x-tar":            FamilyArchive,
	"application/gzip":             FamilyArchive,
	"application/x-gtar":           FamilyArchive,
	"application/x-7z-compressed":  FamilyArchive,
	"message/rfc822":               FamilyEmail,
}

// documentMimeTypes names every non-text, non-image, non-archive MIME
// the extractor registry claims, i.e. the Document family.
var documentMimeTypes = map[string]bool{
	"application/pdf":           true,
	"application/msword":        true,
	"application/vnd.ms-powerpoint": true,
	"application/vnd.ms-excel":  true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.oasis.opendocument.text": true,
	"application/docbook+xml":                 true,
	"application/x-fictionbook+xml":           true,
}

// markupMimeTypes names the single-pass markup formats (RST/Org/OPML/
// Typst/markdown/HTML) which belong to FamilyMarkup rather than plain
// FamilyText, though many also appear under text/ prefixes above; this
// set lets Validate recognize them even if registered without a text/
// prefix.
var markupMimeTypes = map[string]bool{
	"text/html": true, "text/markdown": true, "text/x-rst": true,
	"text/x-org": true, "text/x-opml": true, "text/x-typst": true,
}

// Detect maps (path, bytes) to a canonical MIME string. If path is
// non-empty, the extension table is tried first (case-insensitive,
// longest-suffix match so "tar.gz" beats "gz"). If the extension is
// unknown or ambiguous and preferContentSniffing is set, content
// sniffing on the first kilobyte is attempted as a fallback.
//
// Explicit extension mapping wins over sniffing; sniffing is a
// fallback only (spec.md §4.1 tie-break).
func Detect(path string, data []byte, preferContentSniffing bool) (string, error) {
	if path != "" {
		if mt, ok := detectFromExtension(path); ok {
			return mt, nil
		}
	}
	if preferContentSniffing && len(data) > 0 {
		if mt, ok := sniff(data); ok {
			return mt, nil
		}
	}
	return "", kerr.Parsing("could not identify MIME type", nil)
}

func detectFromExtension(path string) (string, bool) {
	lower := strings.ToLower(path)

	// Longest-suffix match so multi-segment extensions like "tar.gz"
	// are preferred over the trailing "gz" alone.
	best := ""
	for ext := range extensionTable {
		suffix := "." + ext
		if strings.HasSuffix(lower, suffix) && len(suffix) > len(best) {
			best = suffix
		}
	}
	if best == "" {
		return "", false
	}
	return extensionTable[strings.TrimPrefix(best, ".")], true
}

// magic-byte signatures for content sniffing, checked against the first
// kilobyte of data.
var magicSignatures = []struct {
	prefix []byte
	mime   string
}{
	{[]byte("%PDF-"), "application/pdf"},
	{[]byte("PK\x03\x04"), "application/zip"}, // ZIP and ZIP-container office formats
	{[]byte("\x1f\x8b"), "application/gzip"},
	{[]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, "application/msword"}, // legacy OLE2
	{[]byte("7z\xbc\xaf\x27\x1c"), "application/x-7z-compressed"},
	{[]byte("\x89PNG\r\n\x1a\n"), "image/png"},
	{[]byte{0xff, 0xd8, 0xff}, "image/jpeg"},
	{[]byte("GIF8"), "image/gif"},
	{[]byte("{\\rtf"), "text/rtf"},
}

func sniff(data []byte) (string, bool) {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	for _, sig := range magicSignatures {
		if bytes.HasPrefix(head, sig.prefix) {
			return sig.mime, true
		}
	}
	return "", false
}

// Validate reports whether mime belongs to a supported family (spec.md
// §4.1). Wildcard "image/*" is always accepted.
func Validate(mime string) error {
	if mime == "" {
		return kerr.UnsupportedFormat(mime)
	}
	if mime == "image/*" {
		return nil
	}
	for prefix, fam := range familyByPrefix {
		if strings.HasPrefix(mime, prefix) {
			_ = fam
			return nil
		}
	}
	if documentMimeTypes[mime] || markupMimeTypes[mime] {
		return nil
	}
	return kerr.UnsupportedFormat(mime)
}

// FamilyOf returns the family mime belongs to, for callers (e.g. the
// extractor registry) that need to branch on it.
func FamilyOf(mime string) (Family, bool) {
	if documentMimeTypes[mime] {
		return FamilyDocument, true
	}
	if markupMimeTypes[mime] {
		return FamilyMarkup, true
	}
	for prefix, fam := range familyByPrefix {
		if strings.HasPrefix(mime, prefix) {
			return fam, true
		}
	}
	return "", false
}

// MatchesKeepList reports whether name matches any of the glob patterns
// in patterns, used for html_options.keep_inline_images (spec.md §3).
func MatchesKeepList(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
