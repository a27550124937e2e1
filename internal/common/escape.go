package common

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
	"/", "&#047;",
)

// EscapeSpecialCharacters replaces HTML special characters with their entity
// equivalents. Values that are both query keys and rendered as text (user
// ids, space names) are stored and matched only in escaped form.
func EscapeSpecialCharacters(input string) string {
	return htmlEscaper.Replace(input)
}
