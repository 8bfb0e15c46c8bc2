package archive

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// slugify turns an identity field into a filesystem-safe token: diacritics
// stripped, spaces become underscores, anything outside [A-Za-z0-9._-]
// becomes a dash.
func slugify(s string) string {
	s = removeDiacritics(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}

// Filename returns the suggested download filename for the archive:
// "<employee_id>_<name>.zip" with both fields sanitized. The raw fields
// still appear untouched inside metadata.json; only the download hint is
// cleaned.
func Filename(meta Metadata) string {
	id := slugify(meta.EmployeeID)
	name := slugify(meta.Name)

	base := strings.Trim(id+"_"+name, "_")
	if base == "" {
		base = "enrollment"
	}
	return base + ".zip"
}
