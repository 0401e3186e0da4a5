package classifier

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares a comment for matching: invalid UTF-8 is replaced,
// decomposed accents are composed (so "e" + U+0301 becomes "é") and the
// text is lowercased with the locale's case rules.
func Normalize(tag language.Tag, s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	s = norm.NFC.String(s)
	// A Caser holds state and cannot be shared across goroutines.
	return cases.Lower(tag).String(s)
}

// toText coerces arbitrary input to the text that gets classified.
func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case []rune:
		return string(t)
	case float64:
		// Decoded JSON numbers print without an exponent.
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		// fmt recovers from panicking String and Error methods.
		return fmt.Sprint(v)
	}
}

type input struct {
	text   string
	tokens int
}

func newInput(text string) *input {
	return &input{text: text, tokens: -1}
}

// tokenCount is the number of whitespace-separated tokens, counted on first use.
func (in *input) tokenCount() int {
	if in.tokens < 0 {
		in.tokens = len(strings.Fields(in.text))
	}
	return in.tokens
}
