package notifications

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/models"
)

// SMSChannel is the short-form channel, sending through the Twilio REST API
type SMSChannel struct {
	config *config.Config
	client *resty.Client
}

type twilioErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewSMSChannel creates a new SMS channel
func NewSMSChannel(cfg *config.Config) *SMSChannel {
	return &SMSChannel{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// Send delivers the text message. Missing settings yield a *ConfigError
// before any request is made.
func (c *SMSChannel) Send(sms models.SMS) error {
	settings, err := c.config.SMSSettings()
	if err != nil {
		return &ConfigError{Channel: "sms", Err: err}
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		strings.TrimRight(settings.APIURL, "/"), settings.AccountSID)

	var apiErr twilioErrorResponse
	resp, err := c.client.R().
		SetBasicAuth(settings.AccountSID, settings.AuthToken).
		SetFormData(map[string]string{
			"From": settings.From,
			"To":   settings.To,
			"Body": sms.Text,
		}).
		SetError(&apiErr).
		Post(endpoint)

	if err != nil {
		return &DeliveryError{Channel: "sms", Err: fmt.Errorf("failed to send SMS: %w", err)}
	}

	if resp.IsError() {
		return &DeliveryError{
			Channel: "sms",
			Err:     fmt.Errorf("twilio returned status %d: %s", resp.StatusCode(), apiErr.Message),
		}
	}

	return nil
}

// BuildSMS formats the short-form notification: matched terms then the permalink
func BuildSMS(record models.Record, matches models.MatchResult) models.SMS {
	return models.SMS{Text: strings.Join(matches, " ") + " " + record.Permalink}
}
