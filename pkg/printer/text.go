package printer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// glyphs are transliterated before accent stripping; most printers in the
// default code page cannot print them.
var glyphs = map[rune]string{
	'₱': "Php",
	'€': "EUR",
	'£': "GBP",
	'¥': "JPY",
	'₹': "Rs",
	'©': "(c)",
	'®': "(R)",
	'°': "deg",
	'×': "x",
	'–': "-",
	'—': "-",
	'‘': "'",
	'’': "'",
	'“': "\"",
	'”': "\"",
	'…': "...",
	'•': "*",
	'ß': "ss",
	'æ': "ae",
	'Æ': "AE",
	'ø': "o",
	'Ø': "O",
}

// ToASCII returns s with every rune printable in 7-bit ASCII: known glyphs are
// transliterated, diacritics are dropped ("é" -> "e"), control characters are
// removed, and anything left over becomes '?'. The result's byte length is its
// printed width.
func ToASCII(s string) string {
	if isPrintableASCII(s) {
		return s
	}

	var b strings.Builder
	for _, r := range s {
		if rep, ok := glyphs[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, b.String())
	if err != nil {
		stripped = b.String()
	}

	var out strings.Builder
	out.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 0x20 && r < 0x7F:
			out.WriteRune(r)
		case r == '\t':
			out.WriteByte(' ')
		case unicode.IsControl(r):
		default:
			out.WriteByte('?')
		}
	}
	return out.String()
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] >= 0x7F {
			return false
		}
	}
	return true
}
