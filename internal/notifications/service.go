package notifications

import (
	"errors"
	"html"
	"strings"

	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/models"
	"github.com/sirupsen/logrus"
)

// Service handles sending notifications via the email and SMS channels
type Service struct {
	email *EmailChannel
	sms   *SMSChannel
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		email: NewEmailChannel(cfg),
		sms:   NewSMSChannel(cfg),
	}
}

// Notify announces a match on both channels, email first.
//
// A *ConfigError from either channel is returned immediately and stops any
// remaining dispatch. Delivery failures are logged, never block the other
// channel, and come back joined as *DeliveryError values.
func (s *Service) Notify(record models.Record, matches models.MatchResult) error {
	if matches.Empty() {
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"id":        record.ID,
		"permalink": record.Permalink,
	}).Infof("Found %s in %q", strings.Join(matches, ","), record.Title)

	var failures []error

	if err := s.email.Send(BuildEmail(record, matches)); err != nil {
		if IsFatal(err) {
			return err
		}
		logrus.Errorf("Failed to send email notification: %v", err)
		failures = append(failures, err)
	} else {
		logrus.Info("Sent email notification")
	}

	if err := s.sms.Send(BuildSMS(record, matches)); err != nil {
		if IsFatal(err) {
			return err
		}
		logrus.Errorf("Failed to send SMS notification: %v", err)
		failures = append(failures, err)
	} else {
		logrus.Info("Sent SMS notification")
	}

	return errors.Join(failures...)
}

// SendEmail sends a free-form message on the email channel. Newlines in body
// become HTML line breaks.
func (s *Service) SendEmail(subject, body string) error {
	err := s.email.Send(models.Email{
		Subject:  subject,
		HTMLBody: toHTMLLineBreaks(html.EscapeString(body)),
		TextBody: body,
	})
	if err != nil && !IsFatal(err) {
		logrus.Errorf("Failed to send email: %v", err)
	}
	return err
}
