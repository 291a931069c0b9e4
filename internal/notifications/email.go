package notifications

import (
	"fmt"
	"html"
	"strings"

	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/matcher"
	"github.com/legodeal/legodealbot/internal/models"
	"gopkg.in/gomail.v2"
)

const (
	highlightOpen  = "<mark>"
	highlightClose = "</mark>"
)

// Sender delivers composed messages; *gomail.Dialer satisfies it
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailChannel is the long-form channel
type EmailChannel struct {
	config    *config.Config
	newSender func(settings config.EmailSettings) Sender
}

// NewEmailChannel creates an email channel that dials SMTP with gomail
func NewEmailChannel(cfg *config.Config) *EmailChannel {
	return &EmailChannel{
		config: cfg,
		newSender: func(settings config.EmailSettings) Sender {
			// gomail upgrades to TLS with STARTTLS when the server offers it
			return gomail.NewDialer(settings.Host, settings.Port, settings.Username, settings.Password)
		},
	}
}

// Send delivers the email from the configured account. Missing credentials
// yield a *ConfigError before any connection is made.
func (c *EmailChannel) Send(email models.Email) error {
	settings, err := c.config.EmailSettings()
	if err != nil {
		return &ConfigError{Channel: "email", Err: err}
	}

	m := gomail.NewMessage()
	m.SetHeader("From", settings.From)
	m.SetHeader("To", settings.To)
	m.SetHeader("Subject", email.Subject)
	if email.TextBody != "" {
		m.SetBody("text/plain", email.TextBody)
		m.AddAlternative("text/html", email.HTMLBody)
	} else {
		m.SetBody("text/html", email.HTMLBody)
	}

	if err := c.newSender(settings).DialAndSend(m); err != nil {
		return &DeliveryError{Channel: "email", Err: fmt.Errorf("failed to send email: %w", err)}
	}

	return nil
}

// BuildEmail formats the long-form notification for a matched record.
// The subject is the record title unchanged.
func BuildEmail(record models.Record, matches models.MatchResult) models.Email {
	summary := strings.Join(matches, ", ")

	var htmlBody strings.Builder
	htmlBody.WriteString("Found: " + html.EscapeString(summary) + "\n\n")
	htmlBody.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a>\n\n", html.EscapeString(record.URL), html.EscapeString(record.URL)))
	htmlBody.WriteString(html.EscapeString(record.Body))
	for _, term := range matches {
		htmlBody.WriteString("\n\n<b>" + html.EscapeString(term) + "</b>\n")
		htmlBody.WriteString(matcher.Highlight(record.Body, term, highlightOpen, highlightClose, html.EscapeString))
	}

	var textBody strings.Builder
	textBody.WriteString("Found: " + summary + "\n\n")
	textBody.WriteString(record.URL + "\n\n")
	textBody.WriteString(record.Body + "\n")

	return models.Email{
		Subject:  record.Title,
		HTMLBody: toHTMLLineBreaks(htmlBody.String()),
		TextBody: textBody.String(),
	}
}

func toHTMLLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>")
}
