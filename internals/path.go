package internals

import (
	"path"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizePath brings a root-relative path into the canonical form required
// by spec.md §3 invariant 5: forward slashes, no "." segments, ".." segments
// resolved against earlier segments (a leading ".." that has nothing to
// cancel is kept), no leading separator, canonical (NFC) Unicode form.
func NormalizePath(p string) string {
	p = toSlash(p)
	p = strings.TrimPrefix(p, "/")
	p = path.Clean(p)
	if p == "." {
		p = ""
	}
	return norm.NFC.String(p)
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// CompareNames orders two normalized child names by byte-wise comparison, as
// required by spec.md §4.2 ("not locale collation").
func CompareNames(a, b string) int {
	return strings.Compare(a, b)
}
