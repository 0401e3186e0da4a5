package scraper

import (
	"context"

	"campaignpulse/internal/domain"
)

// Scraper fetches recent comments matching a search query.
type Scraper interface {
	Scrape(ctx context.Context, query string) ([]domain.Comment, error)
}
