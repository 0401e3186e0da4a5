package classifier

// RuleKind tags which predicate a rule evaluates.
type RuleKind string

const (
	// KindPattern matches when any of the rule's patterns is found in the comment.
	KindPattern RuleKind = "pattern"
	// KindPatternOrShortComment also matches any comment with fewer
	// whitespace-separated tokens than the rule set's threshold.
	KindPatternOrShortComment RuleKind = "pattern_or_short_comment"
)

const (
	DefaultShortCommentTokenThreshold = 4
	DefaultLocale                     = "es"
)

// RuleSpec is the configuration of a single rule. Patterns are alternatives;
// a rule matches when any one of them is found anywhere in the normalized
// comment.
type RuleSpec struct {
	Name     string   `koanf:"name" json:"name"`
	Topic    Topic    `koanf:"topic" json:"topic"`
	Kind     RuleKind `koanf:"kind" json:"kind"`
	Patterns []string `koanf:"patterns" json:"patterns"`
}

// RuleSet is the swappable configuration one Engine is built from. Rule
// order is priority order.
type RuleSet struct {
	Rules                      []RuleSpec `koanf:"rules" json:"rules"`
	ShortCommentTokenThreshold int        `koanf:"short_comment_token_threshold" json:"short_comment_token_threshold"`
	DefaultTopic               Topic      `koanf:"default_topic" json:"default_topic"`
	Locale                     string     `koanf:"locale" json:"locale"`
}

func (rs RuleSet) withDefaults() RuleSet {
	if rs.ShortCommentTokenThreshold == 0 {
		rs.ShortCommentTokenThreshold = DefaultShortCommentTokenThreshold
	}
	if rs.DefaultTopic == "" {
		rs.DefaultTopic = TopicOther
	}
	if rs.Locale == "" {
		rs.Locale = DefaultLocale
	}

	rules := make([]RuleSpec, len(rs.Rules))
	for i, r := range rs.Rules {
		if r.Kind == "" {
			r.Kind = KindPattern
		}
		if r.Name == "" {
			r.Name = string(r.Topic)
		}
		rules[i] = r
	}
	rs.Rules = rules

	return rs
}
