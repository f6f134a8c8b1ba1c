package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FolderName normalizes a display name into an album folder name: diacritics are
// folded to their base letters, letters lowercased, surrounding whitespace trimmed,
// whitespace runs collapsed to a single underscore, and every character outside
// [a-z0-9_] removed. An empty result means the name has no usable characters.
//
//	"Spring Formal 2024!" -> "spring_formal_2024"
//	"Café  Night"         -> "cafe_night"
func FolderName(displayName string) string {
	folded := foldDiacritics(strings.TrimSpace(displayName))
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace {
			b.WriteByte('_')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return -1
		}
	}, b.String())
	if strings.Trim(out, "_") == "" {
		return ""
	}
	return out
}

func foldDiacritics(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return folded
}

// DisplayTitle suggests a human display name for a directory name such as
// "spring_formal-2024", producing "Spring Formal 2024".
func DisplayTitle(dirName string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(dirName)
	return cases.Title(language.Und).String(strings.Join(strings.Fields(replaced), " "))
}
