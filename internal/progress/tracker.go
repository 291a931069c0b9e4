// Package progress persists the timestamp of the last processed record so a
// restarted loop does not notify twice for the same submission.
package progress

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/legodeal/legodealbot/internal/models"
	"github.com/legodeal/legodealbot/internal/storage"
	"github.com/sirupsen/logrus"
)

// Tracker reads and writes the single "last seen" marker
type Tracker struct {
	storage storage.StorageInterface
	name    string
}

// NewTracker creates a tracker storing its marker under name
func NewTracker(store storage.StorageInterface, name string) *Tracker {
	return &Tracker{storage: store, name: name}
}

// LoadMarker returns the stored marker. ok is false when there is no usable
// marker: absent, unreadable or unparsable values all mean "no history".
func (t *Tracker) LoadMarker(ctx context.Context) (marker float64, ok bool) {
	data, err := t.storage.Retrieve(ctx, t.name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logrus.Debug("No progress marker found, treating every record as new")
		} else {
			logrus.Errorf("Failed to read progress marker %s, treating every record as new: %v", t.name, err)
		}
		return 0, false
	}

	marker, err = parseMarker(data)
	if err != nil {
		logrus.Errorf("Ignoring unparsable progress marker %s: %v", t.name, err)
		return 0, false
	}

	return marker, true
}

// IsNewer reports whether record comes after the marker. A record stamped
// exactly at the marker counts as already seen.
func IsNewer(record models.Record, marker float64, ok bool) bool {
	if !ok {
		return true
	}
	return record.CreatedAt > marker
}

// RecordSeen overwrites the marker with the record's timestamp
func (t *Tracker) RecordSeen(ctx context.Context, record models.Record) error {
	value := strconv.FormatFloat(record.CreatedAt, 'f', -1, 64)
	if err := t.storage.Store(ctx, t.name, []byte(value)); err != nil {
		return fmt.Errorf("failed to persist progress marker: %w", err)
	}
	logrus.Debugf("Progress marker set to %s", value)
	return nil
}

// Reset removes the marker so every record is processed again
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.storage.Delete(ctx, t.name); err != nil {
		return fmt.Errorf("failed to reset progress marker: %w", err)
	}
	logrus.Infof("Progress marker %s reset", t.name)
	return nil
}

func parseMarker(data []byte) (float64, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, fmt.Errorf("empty marker")
	}
	return strconv.ParseFloat(text, 64)
}
