package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeKey derives a stable camelCase property key from free-form
// header text: lower-case, strip '?' and '!', split on runs of
// whitespace/underscore/hyphen, then join with subsequent tokens
// capitalized. The function is pure; the same header always yields the
// same key.
//
//	"Done?"          -> "done"
//	"Due Date"       -> "dueDate"
//	"Who-Can_Help?"  -> "whoCanHelp"
//
// A header consisting only of punctuation or whitespace yields "".
func NormalizeKey(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.Map(func(r rune) rune {
		if r == '?' || r == '!' {
			return -1
		}
		return r
	}, s)

	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '_' || r == '-'
	})
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(tokens[0])
	for _, tok := range tokens[1:] {
		r, size := utf8.DecodeRuneInString(tok)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(tok[size:])
	}
	return b.String()
}
