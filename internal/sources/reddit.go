package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/legodeal/legodealbot/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	redditAuthURL   = "https://www.reddit.com"
	redditOAuthURL  = "https://oauth.reddit.com"
	redditPublicURL = "https://www.reddit.com"
	redditPageLimit = 100
)

// RedditSource polls the newest submissions of a subreddit
type RedditSource struct {
	clientID     string
	clientSecret string
	userAgent    string
	subreddit    string
	baseURL      string
	client       *resty.Client
	accessToken  string
	tokenExpiry  time.Time
}

type redditAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Selftext  string  `json:"selftext"`
	Author    string  `json:"author"`
	Subreddit string  `json:"subreddit"`
	URL       string  `json:"url"`
	Permalink string  `json:"permalink"`
	Created   float64 `json:"created_utc"`
}

// NewRedditSource creates a new Reddit source. Without credentials it reads the
// public listing. baseURL overrides every Reddit host when non-empty.
func NewRedditSource(clientID, clientSecret, userAgent, subreddit, baseURL string) *RedditSource {
	return &RedditSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
		subreddit:    subreddit,
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       resty.New().SetTimeout(30 * time.Second),
	}
}

func (r *RedditSource) Name() string {
	return "reddit"
}

func (r *RedditSource) hasCredentials() bool {
	return r.clientID != "" && r.clientSecret != ""
}

func (r *RedditSource) host(defaultURL string) string {
	if r.baseURL != "" {
		return r.baseURL
	}
	return defaultURL
}

// Poll fetches the newest page of submissions
func (r *RedditSource) Poll(ctx context.Context) ([]models.Record, error) {
	listingHost := r.host(redditPublicURL)

	req := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", r.userAgent).
		SetQueryParams(map[string]string{
			"limit":    fmt.Sprintf("%d", redditPageLimit),
			"raw_json": "1",
		})

	if r.hasCredentials() {
		if err := r.authenticate(ctx); err != nil {
			return nil, fmt.Errorf("reddit authentication failed: %w", err)
		}
		listingHost = r.host(redditOAuthURL)
		req.SetAuthToken(r.accessToken)
	}

	var listing redditListingResponse
	resp, err := req.
		SetResult(&listing).
		Get(fmt.Sprintf("%s/r/%s/new.json", listingHost, r.subreddit))

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode())
	}

	records := make([]models.Record, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		records = append(records, r.toRecord(child.Data))
	}

	logrus.Debugf("Fetched %d submissions from r/%s", len(records), r.subreddit)
	return records, nil
}

func (r *RedditSource) authenticate(ctx context.Context) error {
	if r.accessToken != "" && time.Now().Before(r.tokenExpiry) {
		return nil
	}

	var authResp redditAuthResponse
	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", r.userAgent).
		SetBasicAuth(r.clientID, r.clientSecret).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
		}).
		SetResult(&authResp).
		Post(r.host(redditAuthURL) + "/api/v1/access_token")

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 || authResp.AccessToken == "" {
		return fmt.Errorf("token endpoint returned status %d", resp.StatusCode())
	}

	r.accessToken = authResp.AccessToken
	// Refresh a minute early
	r.tokenExpiry = time.Now().Add(time.Duration(authResp.ExpiresIn)*time.Second - time.Minute)
	return nil
}

func (r *RedditSource) toRecord(post redditPost) models.Record {
	id := post.Name
	if id == "" {
		id = "t3_" + post.ID
	}

	return models.Record{
		ID:        id,
		Title:     post.Title,
		Body:      post.Selftext,
		URL:       post.URL,
		Permalink: redditPublicURL + post.Permalink,
		Author:    post.Author,
		Channel:   post.Subreddit,
		CreatedAt: post.Created,
	}
}
