package quote

import (
	"strings"
	"unicode"
)

var typographic = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"‚", "'",
	"′", "'",
	"“", `"`,
	"”", `"`,
	"„", `"`,
	"″", `"`,
	"–", "-",
	"—", "-",
	"−", "-",
	"…", "...",
	" ", " ",
)

// Normalize makes quote text typeable on a plain keyboard: typographic
// punctuation becomes ASCII and whitespace runs collapse to one space.
func Normalize(text string) string {
	text = typographic.Replace(text)
	return strings.Join(strings.FieldsFunc(text, unicode.IsSpace), " ")
}
