// Package models holds the feed records and notification payloads shared by
// the stream loop, the matcher and the notifier.
package models

import "time"

// Record is a single submission pulled from the feed
type Record struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	URL       string  `json:"url"`
	Permalink string  `json:"permalink"`
	Author    string  `json:"author"`
	Channel   string  `json:"channel"`    // subreddit the submission was posted to
	CreatedAt float64 `json:"created_at"` // seconds since epoch, as reported by the feed
}

// CreatedTime converts CreatedAt to a time.Time
func (r Record) CreatedTime() time.Time {
	sec := int64(r.CreatedAt)
	nsec := int64((r.CreatedAt - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}

// MatchResult holds the distinct search terms found in a record.
// Terms are kept in configured order so notifications read the same way every time.
type MatchResult []string

// Empty reports whether nothing matched
func (m MatchResult) Empty() bool {
	return len(m) == 0
}

// Contains reports whether term is part of the result
func (m MatchResult) Contains(term string) bool {
	for _, t := range m {
		if t == term {
			return true
		}
	}
	return false
}

// Email is the long-form notification payload
type Email struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// SMS is the short-form notification payload
type SMS struct {
	Text string `json:"text"`
}
