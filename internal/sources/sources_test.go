package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redditListing = `{
  "data": {
    "children": [
      {"data": {"id": "b2", "name": "t3_b2", "title": "Modular sale", "selftext": "Assembly Square $150",
        "author": "bricker", "subreddit": "legodeal", "url": "https://shop.example.com/10255",
        "permalink": "/r/legodeal/comments/b2/modular_sale/", "created_utc": 1700000100.0}},
      {"data": {"id": "a1", "title": "New treehouse set revealed", "selftext": "",
        "author": "afol", "subreddit": "legodeal", "url": "https://shop.example.com/21318",
        "permalink": "/r/legodeal/comments/a1/new_treehouse/", "created_utc": 1700000000.5}}
    ]
  }
}`

func TestRedditSource_Name(t *testing.T) {
	source := NewRedditSource("", "", "test/1.0", "legodeal", "")
	assert.Equal(t, "reddit", source.Name())
}

func TestRedditSource_PollPublicListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/legodeal/new.json", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "test/1.0", r.Header.Get("User-Agent"))
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(redditListing))
	}))
	defer server.Close()

	source := NewRedditSource("", "", "test/1.0", "legodeal", server.URL)
	records, err := source.Poll(context.Background())
	require.NoError(t, err)

	expected := []models.Record{
		{
			ID:        "t3_b2",
			Title:     "Modular sale",
			Body:      "Assembly Square $150",
			URL:       "https://shop.example.com/10255",
			Permalink: "https://www.reddit.com/r/legodeal/comments/b2/modular_sale/",
			Author:    "bricker",
			Channel:   "legodeal",
			CreatedAt: 1700000100.0,
		},
		{
			ID:        "t3_a1",
			Title:     "New treehouse set revealed",
			URL:       "https://shop.example.com/21318",
			Permalink: "https://www.reddit.com/r/legodeal/comments/a1/new_treehouse/",
			Author:    "afol",
			Channel:   "legodeal",
			CreatedAt: 1700000000.5,
		},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestRedditSource_PollWithOAuth(t *testing.T) {
	var tokenRequests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/access_token":
			atomic.AddInt32(&tokenRequests, 1)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client", user)
			assert.Equal(t, "secret", pass)
			w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
		case "/r/legodeal/new.json":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.Write([]byte(redditListing))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	source := NewRedditSource("client", "secret", "test/1.0", "legodeal", server.URL)

	for i := 0; i < 2; i++ {
		records, err := source.Poll(context.Background())
		require.NoError(t, err)
		assert.Len(t, records, 2)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenRequests), "token is reused until it expires")
}

func TestRedditSource_PollErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := NewRedditSource("", "", "test/1.0", "legodeal", server.URL)
	_, err := source.Poll(context.Background())
	assert.ErrorContains(t, err, "status 429")
}

const redditRSS = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>newest submissions : legodeal</title>
  <entry>
    <author><name>/u/afol</name></author>
    <content type="html">&lt;div class="md"&gt;&lt;p&gt;The Treehouse is &amp;amp; back&lt;/p&gt;&lt;/div&gt;</content>
    <id>t3_a1</id>
    <link href="https://www.reddit.com/r/legodeal/comments/a1/new_treehouse/"/>
    <updated>2023-11-14T22:13:20+00:00</updated>
    <published>2023-11-14T22:13:20+00:00</published>
    <title>New treehouse set revealed</title>
  </entry>
</feed>`

func TestRSSSource_Poll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/r/legodeal/new/.rss", r.URL.Path)
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(redditRSS))
	}))
	defer server.Close()

	source := NewRSSSource("legodeal", "test/1.0", server.URL)
	assert.Equal(t, "rss", source.Name())

	records, err := source.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, "t3_a1", record.ID)
	assert.Equal(t, "New treehouse set revealed", record.Title)
	assert.Equal(t, "The Treehouse is & back", record.Body)
	assert.Equal(t, "https://www.reddit.com/r/legodeal/comments/a1/new_treehouse/", record.Permalink)
	assert.Equal(t, "/u/afol", record.Author)
	assert.Equal(t, float64(1700000000), record.CreatedAt)
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Basic HTML tags", input: "<p>Hello <strong>world</strong></p>", expected: "Hello world"},
		{name: "Line breaks", input: "Line 1<br>Line 2<br/>Line 3", expected: "Line 1\nLine 2\nLine 3"},
		{name: "Entities", input: "<span>Lego &amp; Duplo</span>", expected: "Lego & Duplo"},
		{name: "Comparison without tag", input: "price > 10", expected: "price > 10"},
		{name: "No HTML tags", input: "Plain text content", expected: "Plain text content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripHTMLTags(tt.input))
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	source, err := NewFromConfig(&config.Config{FeedSource: config.SourceReddit, Subreddit: "legodeal"})
	require.NoError(t, err)
	assert.Equal(t, "reddit", source.Name())

	source, err = NewFromConfig(&config.Config{FeedSource: config.SourceRSS, Subreddit: "legodeal"})
	require.NoError(t, err)
	assert.Equal(t, "rss", source.Name())

	source, err = NewFromConfig(&config.Config{FeedSource: config.SourceHackerNews})
	require.NoError(t, err)
	assert.Equal(t, "hackernews", source.Name())

	_, err = NewFromConfig(&config.Config{FeedSource: "twitter"})
	assert.Error(t, err)
}

func TestHackerNewsSource_Poll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/newstories.json":
			w.Write([]byte(`[3, 2, 1]`))
		case "/item/3.json":
			w.Write([]byte(`{"id":3,"type":"story","by":"pg","time":1700000300,"title":"Lego Treehouse teardown","url":"https://blog.example.com/treehouse"}`))
		case "/item/2.json":
			w.Write([]byte(`{"id":2,"type":"story","deleted":true,"time":1700000200}`))
		case "/item/1.json":
			w.Write([]byte(`{"id":1,"type":"story","by":"dang","time":1700000100,"title":"Ask HN: Modular &amp; sets","text":"<p>Any modular fans?</p>"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	source := NewHackerNewsSource("test/1.0", server.URL)
	assert.Equal(t, "hackernews", source.Name())

	records, err := source.Poll(context.Background())
	require.NoError(t, err)

	expected := []models.Record{
		{
			ID:        "hn_3",
			Title:     "Lego Treehouse teardown",
			URL:       "https://blog.example.com/treehouse",
			Permalink: "https://news.ycombinator.com/item?id=3",
			Author:    "pg",
			Channel:   "hackernews",
			CreatedAt: 1700000300,
		},
		{
			ID:        "hn_1",
			Title:     "Ask HN: Modular & sets",
			Body:      "Any modular fans?",
			URL:       "https://news.ycombinator.com/item?id=1",
			Permalink: "https://news.ycombinator.com/item?id=1",
			Author:    "dang",
			Channel:   "hackernews",
			CreatedAt: 1700000100,
		},
	}
	if diff := cmp.Diff(expected, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}
