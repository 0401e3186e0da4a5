package classifier

import (
	"context"

	"campaignpulse/internal/domain"
)

type Result struct {
	Campaign string
	Topic    Topic
	Rule     string
	Default  bool
}

type Classifier interface {
	Classify(ctx context.Context, c domain.Comment) (*Result, error)
}

// RuleBased classifies comments of one campaign with a rule engine. It never
// returns an error.
type RuleBased struct {
	campaign string
	engine   *Engine
}

func NewRuleBased(campaign string, engine *Engine) *RuleBased {
	return &RuleBased{campaign: campaign, engine: engine}
}

func (r *RuleBased) Classify(_ context.Context, c domain.Comment) (*Result, error) {
	m := r.engine.Explain(c.Content)
	return &Result{
		Campaign: r.campaign,
		Topic:    m.Topic,
		Rule:     m.Rule,
		Default:  m.Index < 0,
	}, nil
}
