package ingest

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
)

var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// ExtSet builds a lookup set of normalized extensions. An empty list yields
// constants.AllowedExtensions.
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return constants.AllowedExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// AllowedExt checks if a file extension is in the allowed set.
func AllowedExt(ext string, allowed map[string]struct{}) bool {
	if allowed == nil {
		allowed = constants.AllowedExtensions
	}
	_, ok := allowed[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// SecureFilename reduces an uploaded file name to a flat ASCII name made of
// letters, digits, '_', '.' and '-'. Path components are folded into the
// name, so "../../etc/passwd" becomes "etc_passwd". It may return "".
func SecureFilename(name string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(name) {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	s := strings.NewReplacer("/", " ", `\`, " ").Replace(b.String())
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameRe.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}
