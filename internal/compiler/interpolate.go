package compiler

import (
	"strings"
	"unicode"

	"github.com/easyjs-lang/easyjs/internal/lexer"
)

// interpolateString wraps bare `$identifier` occurrences in `${...}` so they
// interpolate in a backticked literal. A `$` that is escaped, followed by
// `{`, or not followed by an identifier passes through verbatim.
func interpolateString(input string) string {
	var result strings.Builder

	listening := false
	foundAt := 0

	chars := []rune(input)
	for i, c := range chars {
		next := rune(' ')
		if i+1 < len(chars) {
			next = chars[i+1]
		}
		prev := rune(' ')
		if i > 0 {
			prev = chars[i-1]
		}

		startsIdent := unicode.IsLetter(next) || strings.ContainsRune(lexer.AllowedInIdent, next)
		if c == '$' && prev != '\\' && next != '{' && startsIdent {
			if listening {
				result.WriteRune('}')
			}
			listening = true
			foundAt = i
			result.WriteString("${")
			continue
		}

		if listening && i > foundAt {
			if !unicode.IsLetter(c) && !strings.ContainsRune(lexer.AllowedInIdent, c) {
				listening = false
				result.WriteRune('}')
			}
		}

		result.WriteRune(c)

		if listening && i == len(chars)-1 {
			result.WriteRune('}')
		}
	}

	return result.String()
}
