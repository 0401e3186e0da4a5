package classifier

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestUnicodeWordEdges(t *testing.T) {
	assert.Equal(t, wordEdge+"caro"+wordEdge, unicodeWordEdges(`\bcaro\b`))
	assert.Equal(t, `[\b]x`, unicodeWordEdges(`[\b]x`), "inside a class \\b is a backspace")
	assert.Equal(t, `\\b`, unicodeWordEdges(`\\b`), "escaped backslash followed by b")
	assert.Equal(t, `\$\d+`, unicodeWordEdges(`\$\d+`))
	assert.Equal(t, `[]\b]`+wordEdge, unicodeWordEdges(`[]\b]\b`))
}

func TestCompilePattern_WordEdges(t *testing.T) {
	re, err := compilePattern([]string{`\bcaf\b`})
	require.NoError(t, err)

	assert.True(t, re.MatchString("caf"))
	assert.True(t, re.MatchString("un caf, por favor"))
	assert.False(t, re.MatchString("un café"), "é is a letter, not a word edge")
	assert.False(t, re.MatchString("cafetería"))

	re, err = compilePattern([]string{`\bni[ñn]o\b`})
	require.NoError(t, err)
	assert.True(t, re.MatchString("de niño."))
	assert.False(t, re.MatchString("niños"))
}

func TestCompilePattern_CaseInsensitive(t *testing.T) {
	re, err := compilePattern([]string{`\bIA\b`})
	require.NoError(t, err)
	assert.True(t, re.MatchString("hecho con ia seguro"))
	assert.False(t, re.MatchString("historia"))
}

func TestSplitAlternatives(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "b(c|d)", "[|]", `e\|f`},
		splitAlternatives(`a|b(c|d)|[|]|e\|f`))
	assert.Equal(t, []string{"solo"}, splitAlternatives("solo"))
	assert.Equal(t, []string{"", "x"}, splitAlternatives("|x"))
	assert.Equal(t, []string{"[[:alpha:]|]", "y"}, splitAlternatives("[[:alpha:]|]|y"))
}

func TestValidate(t *testing.T) {
	valid := RuleSpec{Name: "ok", Topic: "T", Patterns: []string{"x"}}

	testCases := []struct {
		name    string
		rs      RuleSet
		problem string
	}{
		{"no rules", RuleSet{}, "no rules"},
		{"blank topic", RuleSet{Rules: []RuleSpec{{Name: "r", Patterns: []string{"x"}}}}, "topic is blank"},
		{"no patterns", RuleSet{Rules: []RuleSpec{{Topic: "T"}}}, "no patterns"},
		{"blank pattern", RuleSet{Rules: []RuleSpec{{Topic: "T", Patterns: []string{"  "}}}}, "blank pattern"},
		{"bad regexp", RuleSet{Rules: []RuleSpec{{Topic: "T", Patterns: []string{"(abc"}}}}, "missing closing )"},
		{"unknown kind", RuleSet{Rules: []RuleSpec{{Topic: "T", Kind: "fuzzy", Patterns: []string{"x"}}}}, `unknown kind "fuzzy"`},
		{"bad locale", RuleSet{Locale: "not a locale!", Rules: []RuleSpec{valid}}, "locale"},
		{
			"negative threshold",
			RuleSet{ShortCommentTokenThreshold: -1, Rules: []RuleSpec{{Topic: "T", Kind: KindPatternOrShortComment, Patterns: []string{"x"}}}},
			"threshold must be positive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(tc.rs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRuleSet))
			assert.Contains(t, err.Error(), tc.problem)
		})
	}

	overlaps, err := Validate(RuleSet{Rules: []RuleSpec{valid}})
	require.NoError(t, err)
	assert.Empty(t, overlaps)
}

func TestValidate_NegativeThresholdWithoutShortRule(t *testing.T) {
	_, err := Validate(RuleSet{
		ShortCommentTokenThreshold: -1,
		Rules:                      []RuleSpec{{Topic: "T", Patterns: []string{"x"}}},
	})
	assert.NoError(t, err)
}

func TestFindOverlaps(t *testing.T) {
	rules := []RuleSpec{
		{Name: "price", Topic: "Price", Patterns: []string{"caro|imposible.*comer", "caro"}},
		{Name: "luxury", Topic: "Luxury", Patterns: []string{"lujo", "Imposible.*comer"}},
		{Name: "other", Topic: "Other", Patterns: []string{"lujo|otra cosa"}},
	}

	overlaps := findOverlaps(rules)
	require.Len(t, overlaps, 2)

	assert.Equal(t, Overlap{
		Alternative: "imposible.*comer",
		FirstRule:   "price",
		FirstTopic:  "Price",
		LaterRule:   "luxury",
		LaterTopic:  "Luxury",
	}, overlaps[0])
	assert.Equal(t, "lujo", overlaps[1].Alternative)
	assert.Equal(t, "luxury", overlaps[1].FirstRule)
	assert.Equal(t, "other", overlaps[1].LaterRule)
	assert.Contains(t, overlaps[0].String(), "shadowed")
}

func TestNormalize(t *testing.T) {
	es := language.Spanish

	assert.Equal(t, "áéíñóú", Normalize(es, "ÁÉÍÑÓÚ"))
	assert.Equal(t, "canción", Normalize(es, "CANCIÓN"))
	assert.Equal(t, "canción", Normalize(es, "CANCIO\u0301N"))
	assert.Equal(t, "a\uFFFDb", Normalize(es, "A\xffB"))
	assert.Equal(t, "", Normalize(es, ""))
}

func TestInputTokenCount(t *testing.T) {
	assert.Equal(t, 0, newInput("   ").tokenCount())
	assert.Equal(t, 3, newInput(" uno\tdos\n tres ").tokenCount())
	assert.Equal(t, 1, newInput("❤️❤️").tokenCount())
}

func TestToText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hola", "hola"},
		{"bytes", []byte("hola"), "hola"},
		{"runes", []rune("hola"), "hola"},
		{"whole float", float64(5000), "5000"},
		{"large float", float64(1e21), "1000000000000000000000"},
		{"fraction", 1.5, "1.5"},
		{"float32", float32(2.5), "2.5"},
		{"int", 4200, "4200"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toText(tt.in))
		})
	}
}
