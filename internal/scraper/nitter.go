package scraper

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"campaignpulse/internal/domain"
)

type Nitter struct {
	baseURL string
	client  *http.Client
	parser  *gofeed.Parser
}

// NewNitter accepts a bare host ("nitter.net") or a full base URL.
func NewNitter(instance string) *Nitter {
	base := strings.TrimSuffix(instance, "/")
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}

	return &Nitter{
		baseURL: base,
		client:  &http.Client{Timeout: 15 * time.Second},
		parser:  gofeed.NewParser(),
	}
}

// Scrape reads the search RSS feed for query. Each item is one comment.
func (n *Nitter) Scrape(ctx context.Context, query string) ([]domain.Comment, error) {
	u := fmt.Sprintf("%s/search/rss?f=tweets&q=%s", n.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml, */*")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	feed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	comments := make([]domain.Comment, 0, len(feed.Items))
	for _, item := range feed.Items {
		createdAt := time.Now()
		if item.PublishedParsed != nil {
			createdAt = *item.PublishedParsed
		}

		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}

		comments = append(comments, domain.Comment{
			ID:         generateID(guid),
			ExternalID: guid,
			Author:     authorName(item),
			Username:   usernameFromLink(item.Link),
			Content:    item.Title,
			Source:     domain.SourceTwitter,
			Query:      query,
			CreatedAt:  createdAt,
		})
	}

	return comments, nil
}

// authorName prefers the RSS author and falls back to dc:creator, which is
// where Nitter puts the handle.
func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	if dc := item.DublinCoreExt; dc != nil && len(dc.Creator) > 0 {
		return strings.TrimSpace(dc.Creator[0])
	}
	return ""
}

// usernameFromLink extracts "user" from https://host/user/status/123#m.
func usernameFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func generateID(guid string) string {
	hash := md5.Sum([]byte(guid))
	return fmt.Sprintf("%x", hash)[:12]
}
