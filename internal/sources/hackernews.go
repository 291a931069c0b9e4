package sources

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/legodeal/legodealbot/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	hackerNewsAPIURL = "https://hacker-news.firebaseio.com/v0"
	hackerNewsLimit  = 30
)

// HackerNewsSource polls the newest Hacker News stories
type HackerNewsSource struct {
	client  *resty.Client
	baseURL string
}

type hackerNewsItem struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	By      string `json:"by"`
	Time    int64  `json:"time"`
	Text    string `json:"text"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Deleted bool   `json:"deleted"`
	Dead    bool   `json:"dead"`
}

// NewHackerNewsSource creates a new Hacker News source. baseURL overrides the API host when non-empty.
func NewHackerNewsSource(userAgent, baseURL string) *HackerNewsSource {
	if baseURL == "" {
		baseURL = hackerNewsAPIURL
	}
	return &HackerNewsSource{
		client: resty.New().
			SetTimeout(30 * time.Second).
			SetHeader("User-Agent", userAgent),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (h *HackerNewsSource) Name() string {
	return "hackernews"
}

// Poll fetches the newest stories. Items that fail to load are skipped.
func (h *HackerNewsSource) Poll(ctx context.Context) ([]models.Record, error) {
	itemIDs, err := h.getRecentItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}

	if len(itemIDs) > hackerNewsLimit {
		itemIDs = itemIDs[:hackerNewsLimit]
	}

	var records []models.Record
	for _, itemID := range itemIDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item, err := h.getItem(ctx, itemID)
		if err != nil {
			logrus.Debugf("Failed to get HN item %d: %v", itemID, err)
			continue
		}

		if item == nil || item.Time == 0 || item.Deleted || item.Dead {
			continue
		}

		records = append(records, h.toRecord(item))
	}

	return records, nil
}

func (h *HackerNewsSource) toRecord(item *hackerNewsItem) models.Record {
	permalink := fmt.Sprintf("https://news.ycombinator.com/item?id=%d", item.ID)
	url := permalink
	if item.URL != "" {
		url = item.URL
	}

	return models.Record{
		ID:        fmt.Sprintf("hn_%d", item.ID),
		Title:     html.UnescapeString(item.Title),
		Body:      stripHTMLTags(item.Text),
		URL:       url,
		Permalink: permalink,
		Author:    item.By,
		Channel:   "hackernews",
		CreatedAt: float64(item.Time),
	}
}

func (h *HackerNewsSource) getRecentItems(ctx context.Context) ([]int, error) {
	var itemIDs []int
	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&itemIDs).
		Get(h.baseURL + "/newstories.json")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hacker news API returned status %d", resp.StatusCode())
	}

	return itemIDs, nil
}

func (h *HackerNewsSource) getItem(ctx context.Context, itemID int) (*hackerNewsItem, error) {
	var item *hackerNewsItem
	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&item).
		Get(fmt.Sprintf("%s/item/%d.json", h.baseURL, itemID))

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("hacker news API returned status %d for item %d", resp.StatusCode(), itemID)
	}

	return item, nil
}
