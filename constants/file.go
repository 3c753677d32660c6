package constants

import "strings"

// Source formats understood by the document-text stage.
const (
	PDF  = "PDF"
	TEXT = "TEXT"
)

// FileTypes holds the allowed values for a document's source format.
var FileTypes = []string{PDF, TEXT}

// AllowedExtensions holds the default allowed file extensions for uploads and batch runs.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps a file extension to its source format, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TEXT
	default:
		return ""
	}
}
