package utils

import (
	"strings"
	"unicode"
)

// Transliteration table for Cyrillic titles, matching the slugs the site has
// always produced for its content language.
var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// Slugify normalizes text into a URL-safe token: lowercase, transliterated,
// [a-z0-9-] only, single dashes, no leading/trailing dash.
func Slugify(text string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if t, ok := translit[r]; ok {
				b.WriteString(t)
				if t != "" {
					lastDash = false
				}
				continue
			}
			if unicode.IsSpace(r) || r == '-' || r == '_' || r == '/' || r == '.' {
				if !lastDash {
					b.WriteByte('-')
					lastDash = true
				}
			}
			// anything else is dropped
		}
	}
	return strings.TrimRight(b.String(), "-")
}
