package notifications

import (
	"errors"
	"fmt"
)

// ConfigError means a channel is missing required settings. It is fatal: it is
// raised before any network I/O and callers are expected to stop.
type ConfigError struct {
	Channel string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s channel misconfigured: %v", e.Channel, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// DeliveryError means a configured channel failed to deliver. It is
// recoverable: the message is lost and processing continues.
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a ConfigError
func IsFatal(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

// IsRecoverable reports whether err only carries delivery failures
func IsRecoverable(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}
	var deliveryErr *DeliveryError
	return errors.As(err, &deliveryErr)
}
