package classifier

import "regexp"

// Rule is a compiled classification rule. The set of implementations is
// closed: PatternRule and PatternOrShortCommentRule.
type Rule interface {
	Name() string
	Topic() Topic
	Kind() RuleKind
	evaluate(in *input) (matched, short bool)
}

// PatternRule matches when its pattern is found anywhere in the comment.
type PatternRule struct {
	name    string
	topic   Topic
	pattern *regexp.Regexp
}

func (r *PatternRule) Name() string   { return r.name }
func (r *PatternRule) Topic() Topic   { return r.topic }
func (r *PatternRule) Kind() RuleKind { return KindPattern }

// Pattern returns the compiled expression, after word-edge rewriting.
func (r *PatternRule) Pattern() string { return r.pattern.String() }

func (r *PatternRule) evaluate(in *input) (bool, bool) {
	return r.pattern.MatchString(in.text), false
}

// PatternOrShortCommentRule matches when its pattern is found or when the
// comment has fewer than Threshold whitespace-separated tokens.
type PatternOrShortCommentRule struct {
	PatternRule
	Threshold int
}

func (r *PatternOrShortCommentRule) Kind() RuleKind { return KindPatternOrShortComment }

func (r *PatternOrShortCommentRule) evaluate(in *input) (bool, bool) {
	if r.pattern.MatchString(in.text) {
		return true, false
	}
	if in.tokenCount() < r.Threshold {
		return true, true
	}
	return false, false
}

func compileRule(spec RuleSpec, threshold int) (Rule, error) {
	re, err := compilePattern(spec.Patterns)
	if err != nil {
		return nil, err
	}

	base := PatternRule{name: spec.Name, topic: spec.Topic, pattern: re}
	if spec.Kind == KindPatternOrShortComment {
		return &PatternOrShortCommentRule{PatternRule: base, Threshold: threshold}, nil
	}
	return &base, nil
}
