package classifier

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Engine classifies comments against an ordered rule table. It is built once
// from a RuleSet, never mutated afterwards and safe for concurrent use.
type Engine struct {
	rules        []Rule
	defaultTopic Topic
	locale       language.Tag
	topics       []Topic
	overlaps     []Overlap
}

// Match explains which rule decided a classification.
type Match struct {
	Topic Topic  `json:"topic"`
	Rule  string `json:"rule,omitempty"`
	// Index is the rule's position in the table, or -1 for the default topic.
	Index        int  `json:"index"`
	ShortComment bool `json:"short_comment,omitempty"`
}

type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger logs rule-table findings while the engine is built.
// Classification itself never logs.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New validates and compiles rs.
func New(rs RuleSet, opts ...Option) (*Engine, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	rs = rs.withDefaults()

	overlaps, err := Validate(rs)
	if err != nil {
		return nil, err
	}

	tag, err := language.Parse(rs.Locale)
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", ErrInvalidRuleSet, rs.Locale, err)
	}

	e := &Engine{
		rules:        make([]Rule, 0, len(rs.Rules)),
		defaultTopic: rs.DefaultTopic,
		locale:       tag,
		overlaps:     overlaps,
	}

	seen := make(map[Topic]bool)
	for i, spec := range rs.Rules {
		rule, err := compileRule(spec, rs.ShortCommentTokenThreshold)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRuleSet, i, spec.Name, err)
		}
		e.rules = append(e.rules, rule)

		if !seen[spec.Topic] {
			seen[spec.Topic] = true
			e.topics = append(e.topics, spec.Topic)
		}
	}
	if !seen[rs.DefaultTopic] {
		e.topics = append(e.topics, rs.DefaultTopic)
	}

	for _, ov := range overlaps {
		o.logger.Warn("overlapping rule pattern",
			zap.String("alternative", ov.Alternative),
			zap.String("first_rule", ov.FirstRule),
			zap.String("later_rule", ov.LaterRule))
	}
	o.logger.Debug("classifier engine built",
		zap.Int("rules", len(e.rules)),
		zap.Int("threshold", rs.ShortCommentTokenThreshold),
		zap.String("default_topic", string(e.defaultTopic)),
		zap.String("locale", tag.String()))

	return e, nil
}

// Classify returns the topic of the first rule matching comment, or the
// default topic when none does.
func (e *Engine) Classify(comment string) Topic {
	return e.Explain(comment).Topic
}

// ClassifyValue classifies the textual form of v. nil is treated as an empty
// comment.
func (e *Engine) ClassifyValue(v any) Topic {
	return e.Classify(toText(v))
}

// ExplainValue is Explain for the textual form of v.
func (e *Engine) ExplainValue(v any) Match {
	return e.Explain(toText(v))
}

// Explain classifies comment and reports the deciding rule.
func (e *Engine) Explain(comment string) Match {
	in := newInput(Normalize(e.locale, comment))

	for i, rule := range e.rules {
		if ok, short := rule.evaluate(in); ok {
			return Match{
				Topic:        rule.Topic(),
				Rule:         rule.Name(),
				Index:        i,
				ShortComment: short,
			}
		}
	}

	return Match{Topic: e.defaultTopic, Index: -1}
}

// Topics lists every topic the engine can return, in rule order, with the
// default topic last unless a rule already uses it.
func (e *Engine) Topics() []Topic {
	out := make([]Topic, len(e.topics))
	copy(out, e.topics)
	return out
}

func (e *Engine) DefaultTopic() Topic {
	return e.defaultTopic
}

func (e *Engine) Overlaps() []Overlap {
	out := make([]Overlap, len(e.overlaps))
	copy(out, e.overlaps)
	return out
}

func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// Rules returns the compiled rules in priority order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
