package classifier

import (
	"regexp"
	"strings"
)

// wordEdge stands in for \b. RE2's \b only treats ASCII as word characters,
// which splits words like "niño" or "vacío" in the middle.
const wordEdge = `(?:^|$|[^\p{L}\p{N}_])`

// compilePattern joins a rule's alternatives into one case-insensitive
// expression.
func compilePattern(alternatives []string) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		parts = append(parts, "(?:"+unicodeWordEdges(alt)+")")
	}
	return regexp.Compile("(?i)" + strings.Join(parts, "|"))
}

// unicodeWordEdges rewrites every \b outside a character class to wordEdge.
// The replacement consumes the neighbouring character, which is fine for
// search-only use where match positions are never reported.
func unicodeWordEdges(p string) string {
	var b strings.Builder
	b.Grow(len(p))

	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			if i+1 >= len(p) {
				b.WriteByte(p[i])
				continue
			}
			if p[i+1] == 'b' {
				b.WriteString(wordEdge)
			} else {
				b.WriteString(p[i : i+2])
			}
			i++
		case '[':
			end := classEnd(p, i)
			b.WriteString(p[i : end+1])
			i = end
		default:
			b.WriteByte(p[i])
		}
	}

	return b.String()
}

// splitAlternatives splits p at its top-level '|' operators.
func splitAlternatives(p string) []string {
	var (
		parts []string
		depth int
		start int
	)

	for i := 0; i < len(p); i++ {
		switch p[i] {
		case '\\':
			i++
		case '[':
			i = classEnd(p, i)
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '|':
			if depth == 0 {
				parts = append(parts, p[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, p[start:])
}

// classEnd returns the index of the ']' closing the character class that
// opens at p[start]. A ']' directly after the opening bracket (or after a
// leading '^') is a literal, and [:name:] groups are skipped whole.
func classEnd(p string, start int) int {
	j := start + 1
	if j < len(p) && p[j] == '^' {
		j++
	}
	if j < len(p) && p[j] == ']' {
		j++
	}

	for j < len(p) {
		switch p[j] {
		case '\\':
			j += 2
			continue
		case '[':
			if j+1 < len(p) && p[j+1] == ':' {
				if k := strings.Index(p[j+2:], ":]"); k >= 0 {
					j += k + 4
					continue
				}
			}
		case ']':
			return j
		}
		j++
	}

	return len(p) - 1
}
