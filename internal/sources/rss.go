package sources

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/legodeal/legodealbot/internal/models"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// RSSSource polls the public RSS feed of a subreddit. It needs no credentials.
type RSSSource struct {
	subreddit string
	feedURL   string
	userAgent string
	parser    *gofeed.Parser
}

// NewRSSSource creates a new RSS source. baseURL overrides the Reddit host when non-empty.
func NewRSSSource(subreddit, userAgent, baseURL string) *RSSSource {
	host := strings.TrimRight(baseURL, "/")
	if host == "" {
		host = redditPublicURL
	}

	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &RSSSource{
		subreddit: subreddit,
		feedURL:   fmt.Sprintf("%s/r/%s/new/.rss", host, subreddit),
		userAgent: userAgent,
		parser:    parser,
	}
}

func (s *RSSSource) Name() string {
	return "rss"
}

// Poll fetches and parses the feed
func (s *RSSSource) Poll(ctx context.Context) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", s.feedURL, err)
	}

	records := make([]models.Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		records = append(records, s.toRecord(item))
	}

	logrus.Debugf("Fetched %d feed items from %s", len(records), s.feedURL)
	return records, nil
}

func (s *RSSSource) toRecord(item *gofeed.Item) models.Record {
	var createdAt float64
	switch {
	case item.PublishedParsed != nil:
		createdAt = float64(item.PublishedParsed.Unix())
	case item.UpdatedParsed != nil:
		createdAt = float64(item.UpdatedParsed.Unix())
	}

	id := item.GUID
	if id == "" {
		id = item.Link
	}

	body := item.Content
	if body == "" {
		body = item.Description
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	}

	return models.Record{
		ID:        id,
		Title:     item.Title,
		Body:      stripHTMLTags(body),
		URL:       item.Link,
		Permalink: item.Link,
		Author:    author,
		Channel:   s.subreddit,
		CreatedAt: createdAt,
	}
}

func stripHTMLTags(content string) string {
	content = strings.ReplaceAll(content, "<p>", "\n")
	content = strings.ReplaceAll(content, "</p>", "\n")
	content = strings.ReplaceAll(content, "<br>", "\n")
	content = strings.ReplaceAll(content, "<br/>", "\n")

	// Remove other HTML tags
	for strings.Contains(content, "<") && strings.Contains(content, ">") {
		start := strings.Index(content, "<")
		end := strings.Index(content[start:], ">")
		if end < 0 {
			break
		}
		content = content[:start] + content[start+end+1:]
	}

	return strings.TrimSpace(html.UnescapeString(content))
}
