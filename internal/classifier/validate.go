package classifier

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrInvalidRuleSet wraps every rule-table validation failure.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// Overlap reports a pattern alternative declared by more than one rule.
// First-match order still decides: comments matching the alternative always
// land in the earlier rule, so the later occurrence never fires through it.
type Overlap struct {
	Alternative string `json:"alternative"`
	FirstRule   string `json:"first_rule"`
	FirstTopic  Topic  `json:"first_topic"`
	LaterRule   string `json:"later_rule"`
	LaterTopic  Topic  `json:"later_topic"`
}

func (o Overlap) String() string {
	return fmt.Sprintf("%q in %q is shadowed by %q", o.Alternative, o.LaterRule, o.FirstRule)
}

// Validate checks a rule set and reports overlapping alternatives. Overlaps
// are informational; only the returned error makes a rule set unusable.
func Validate(rs RuleSet) ([]Overlap, error) {
	rs = rs.withDefaults()

	var problems []string
	if len(rs.Rules) == 0 {
		problems = append(problems, "no rules")
	}
	if strings.TrimSpace(string(rs.DefaultTopic)) == "" {
		problems = append(problems, "default topic is blank")
	}
	if _, err := language.Parse(rs.Locale); err != nil {
		problems = append(problems, fmt.Sprintf("locale %q: %v", rs.Locale, err))
	}

	hasShortRule := false
	for i, r := range rs.Rules {
		where := fmt.Sprintf("rule %d (%s)", i, r.Name)

		if strings.TrimSpace(string(r.Topic)) == "" {
			problems = append(problems, where+": topic is blank")
		}
		switch r.Kind {
		case KindPattern:
		case KindPatternOrShortComment:
			hasShortRule = true
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown kind %q", where, r.Kind))
		}
		if len(r.Patterns) == 0 {
			problems = append(problems, where+": no patterns")
		}
		for _, p := range r.Patterns {
			if strings.TrimSpace(p) == "" {
				problems = append(problems, where+": blank pattern")
				continue
			}
			if _, err := compilePattern([]string{p}); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", where, err))
			}
		}
	}

	if hasShortRule && rs.ShortCommentTokenThreshold < 1 {
		problems = append(problems, fmt.Sprintf("short comment token threshold must be positive, got %d", rs.ShortCommentTokenThreshold))
	}

	overlaps := findOverlaps(rs.Rules)

	if len(problems) > 0 {
		return overlaps, fmt.Errorf("%w: %s", ErrInvalidRuleSet, strings.Join(problems, "; "))
	}
	return overlaps, nil
}

func findOverlaps(rules []RuleSpec) []Overlap {
	type origin struct {
		rule  int
		name  string
		topic Topic
	}

	var overlaps []Overlap
	seen := make(map[string]origin)

	for i, r := range rules {
		for _, p := range r.Patterns {
			for _, alt := range splitAlternatives(p) {
				key := strings.ToLower(strings.TrimSpace(alt))
				if key == "" {
					continue
				}
				first, ok := seen[key]
				if !ok {
					seen[key] = origin{rule: i, name: r.Name, topic: r.Topic}
					continue
				}
				if first.rule == i {
					continue
				}
				overlaps = append(overlaps, Overlap{
					Alternative: key,
					FirstRule:   first.name,
					FirstTopic:  first.topic,
					LaterRule:   r.Name,
					LaterTopic:  r.Topic,
				})
			}
		}
	}

	return overlaps
}
