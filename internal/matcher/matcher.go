// Package matcher finds configured search terms in feed records.
package matcher

import (
	"regexp"
	"strings"

	"github.com/legodeal/legodealbot/internal/models"
)

// FindMatches returns the distinct terms that occur, case-insensitively, in the
// record's title or body. Terms are literal substrings.
func FindMatches(record models.Record, terms []string) models.MatchResult {
	title := strings.ToLower(record.Title)
	body := strings.ToLower(record.Body)

	var found models.MatchResult
	for _, term := range terms {
		needle := strings.ToLower(term)
		if needle == "" || found.Contains(needle) {
			continue
		}
		if strings.Contains(title, needle) || strings.Contains(body, needle) {
			found = append(found, needle)
		}
	}

	return found
}

// Highlight wraps every case-insensitive occurrence of term in text with openTag
// and closeTag, keeping the casing of the original occurrence. Text between
// occurrences is passed through escape, which may be nil.
func Highlight(text, term, openTag, closeTag string, escape func(string) string) string {
	if escape == nil {
		escape = func(s string) string { return s }
	}
	if term == "" {
		return escape(text)
	}

	// Case folding is done by the regexp engine on the original text, so byte
	// offsets stay valid even where lowercasing changes a rune's width.
	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))

	var b strings.Builder
	pos := 0
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		b.WriteString(escape(text[pos:loc[0]]))
		b.WriteString(openTag)
		b.WriteString(escape(text[loc[0]:loc[1]]))
		b.WriteString(closeTag)
		pos = loc[1]
	}
	b.WriteString(escape(text[pos:]))

	return b.String()
}
