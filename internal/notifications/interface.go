package notifications

import "github.com/legodeal/legodealbot/internal/models"

// NotificationInterface defines the contract for notification services
type NotificationInterface interface {
	Notify(record models.Record, matches models.MatchResult) error
	SendEmail(subject, body string) error
}
