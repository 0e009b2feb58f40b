// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// parseBulletList parses the summarizer output as a literal list of
// quoted strings, e.g. ['point 1', "point 2"]. Both quote styles are
// accepted, with backslash escapes inside. Anything outside the brackets,
// a non-string element, or an empty list is a parse failure.
func parseBulletList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a list literal: %q", shorten(s))
	}

	inner := s[1 : len(s)-1]
	var bullets []string
	i := 0
	for {
		i = skipSpace(inner, i)
		if i >= len(inner) {
			break
		}

		quote := inner[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("element %d is not a quoted string", len(bullets))
		}
		elem, next, err := scanString(inner, i)
		if err != nil {
			return nil, err
		}
		bullets = append(bullets, elem)
		i = skipSpace(inner, next)

		if i >= len(inner) {
			break
		}
		if inner[i] != ',' {
			return nil, fmt.Errorf("unexpected character %q after element %d", inner[i], len(bullets)-1)
		}
		i++ // trailing comma before ] is tolerated
	}

	if len(bullets) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return bullets, nil
}

// scanString reads one quoted string starting at the opening quote and
// returns the unescaped contents plus the index just past the closing quote.
func scanString(s string, start int) (string, int, error) {
	quote := s[start]
	var b strings.Builder
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("dangling escape at end of input")
			}
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(s[i])
			}
		case quote:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func skipSpace(s string, i int) int {
	for i < len(s) && unicode.IsSpace(rune(s[i])) {
		i++
	}
	return i
}

// parseRating parses the rater output as a bare integer and validates the
// range. An out-of-range value fails exactly like a non-integer: the score
// is never clamped.
func parseRating(s string) (int, error) {
	trimmed := strings.TrimSpace(s)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", shorten(trimmed))
	}
	if n < 0 || n > 10 {
		return 0, fmt.Errorf("rating %d is outside valid range 0-10", n)
	}
	return n, nil
}
