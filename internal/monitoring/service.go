package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/legodeal/legodealbot/internal/config"
	"github.com/legodeal/legodealbot/internal/matcher"
	"github.com/legodeal/legodealbot/internal/models"
	"github.com/legodeal/legodealbot/internal/notifications"
	"github.com/legodeal/legodealbot/internal/progress"
	"github.com/sirupsen/logrus"
)

// Outcome describes what happened to a single record
type Outcome int

const (
	OutcomeSkipped Outcome = iota // already seen
	OutcomeNoMatch
	OutcomeMatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeMatched:
		return "matched"
	}
	return "unknown"
}

// RecordStream is a blocking, in-order sequence of records
type RecordStream interface {
	Next(ctx context.Context) (models.Record, error)
}

// Service runs the stream loop: staleness gate, match, notify, record progress
type Service struct {
	config              *config.Config
	tracker             *progress.Tracker
	notificationService notifications.NotificationInterface
	metrics             *Metrics
	mu                  sync.RWMutex
}

// Metrics holds stream loop counters
type Metrics struct {
	StartedAt            time.Time      `json:"started_at"`
	Processed            int            `json:"processed"`
	Skipped              int            `json:"skipped"`
	Matched              int            `json:"matched"`
	NotificationFailures int            `json:"notification_failures"`
	LastRecordAt         time.Time      `json:"last_record_at"`
	LastMarker           float64        `json:"last_marker"`
	TermCounts           map[string]int `json:"term_counts"`
}

// NewService creates a new monitoring service
func NewService(cfg *config.Config, tracker *progress.Tracker, notificationService notifications.NotificationInterface) *Service {
	return &Service{
		config:              cfg,
		tracker:             tracker,
		notificationService: notificationService,
		metrics: &Metrics{
			StartedAt:  time.Now(),
			TermCounts: make(map[string]int),
		},
	}
}

// Run pulls records until the stream fails, a fatal notification error
// occurs, or ctx is cancelled. Cancellation returns nil.
func (s *Service) Run(ctx context.Context, stream RecordStream) error {
	logrus.Infof("Watching for %s", strings.Join(s.config.SearchTerms, ", "))

	for {
		record, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logrus.Info("Stream loop stopped")
				return nil
			}
			return fmt.Errorf("feed failed: %w", err)
		}

		if _, err := s.ProcessRecord(ctx, record); err != nil {
			return err
		}
	}
}

// ProcessRecord handles one record. The marker is written after any
// notification attempt; a fatal notification error returns before the write
// so the record is retried after restart.
func (s *Service) ProcessRecord(ctx context.Context, record models.Record) (Outcome, error) {
	marker, ok := s.tracker.LoadMarker(ctx)
	if !progress.IsNewer(record, marker, ok) {
		logrus.Debugf("Skipping already seen post: %s", record.Title)
		s.updateMetrics(OutcomeSkipped, record, nil, false)
		return OutcomeSkipped, nil
	}

	logrus.Infof("Searching post: %s", record.Title)
	matches := matcher.FindMatches(record, s.config.SearchTerms)

	outcome := OutcomeNoMatch
	failed := false
	if !matches.Empty() {
		outcome = OutcomeMatched
		if err := s.notificationService.Notify(record, matches); err != nil {
			if notifications.IsFatal(err) {
				return outcome, fmt.Errorf("notification aborted: %w", err)
			}
			failed = true
			logrus.Warnf("Notification for %s partially failed: %v", record.ID, err)
		}
	}

	if err := s.tracker.RecordSeen(ctx, record); err != nil {
		// The record was handled; a lost marker only risks a repeat after restart.
		logrus.Errorf("Failed to record progress for %s: %v", record.ID, err)
	}

	s.updateMetrics(outcome, record, matches, failed)
	return outcome, nil
}

func (s *Service) updateMetrics(outcome Outcome, record models.Record, matches models.MatchResult, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if outcome == OutcomeSkipped {
		s.metrics.Skipped++
		return
	}

	s.metrics.Processed++
	s.metrics.LastRecordAt = record.CreatedTime()
	s.metrics.LastMarker = record.CreatedAt
	if outcome == OutcomeMatched {
		s.metrics.Matched++
	}
	if failed {
		s.metrics.NotificationFailures++
	}
	for _, term := range matches {
		s.metrics.TermCounts[term]++
	}
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
