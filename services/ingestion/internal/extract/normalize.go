package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxTextLength = 200

// CleanText folds s to NFKC, keeps word characters, whitespace and -.,&()/, collapses
// whitespace runs to one space and truncates to 200 characters.
func CleanText(s string) string {
	s = norm.NFKC.String(s)

	kept := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r), r == '_':
			return r
		case unicode.IsSpace(r):
			return ' '
		case strings.ContainsRune("-.,&()/", r):
			return r
		default:
			return -1
		}
	}, s)

	s = strings.Join(strings.Fields(kept), " ")

	if runes := []rune(s); len(runes) > maxTextLength {
		s = strings.TrimSpace(string(runes[:maxTextLength]))
	}
	return s
}
