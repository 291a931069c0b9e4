package sources

import (
	"fmt"

	"github.com/legodeal/legodealbot/internal/config"
)

// NewFromConfig returns the feed source selected by FEED_SOURCE
func NewFromConfig(cfg *config.Config) (Source, error) {
	switch cfg.FeedSource {
	case config.SourceReddit:
		return NewRedditSource(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent, cfg.Subreddit, cfg.RedditBaseURL), nil
	case config.SourceRSS:
		return NewRSSSource(cfg.Subreddit, cfg.RedditUserAgent, cfg.RedditBaseURL), nil
	case config.SourceHackerNews:
		return NewHackerNewsSource(cfg.RedditUserAgent, cfg.HackerNewsBaseURL), nil
	}
	return nil, fmt.Errorf("unknown feed source %q", cfg.FeedSource)
}
