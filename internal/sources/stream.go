package sources

import (
	"context"
	"sort"
	"time"

	"github.com/legodeal/legodealbot/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	streamBuffer  = 100
	dedupCapacity = 301
)

// Stream turns a polled Source into a blocking, in-order sequence of records.
// A single reader goroutine polls the source and feeds a bounded channel; Next
// must be called from one consumer.
type Stream struct {
	source   Source
	interval time.Duration
	records  chan models.Record
	err      error
	seen     *boundedSet
}

// NewStream creates a stream polling source every interval
func NewStream(source Source, interval time.Duration) *Stream {
	return &Stream{
		source:   source,
		interval: interval,
		records:  make(chan models.Record, streamBuffer),
		seen:     newBoundedSet(dedupCapacity),
	}
}

// Start launches the reader goroutine. It stops on the first feed error or
// when ctx is done.
func (s *Stream) Start(ctx context.Context) {
	go s.run(ctx)
}

// Next blocks until the next record is available. It returns the feed error
// once the stream has ended.
func (s *Stream) Next(ctx context.Context) (models.Record, error) {
	select {
	case record, ok := <-s.records:
		if !ok {
			return models.Record{}, s.err
		}
		return record, nil
	case <-ctx.Done():
		return models.Record{}, ctx.Err()
	}
}

func (s *Stream) run(ctx context.Context) {
	defer close(s.records)

	for {
		records, err := s.source.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.err = ctx.Err()
				return
			}
			logrus.Errorf("Feed %s failed: %v", s.source.Name(), err)
			s.err = err
			return
		}

		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt < records[j].CreatedAt
		})

		for _, record := range records {
			if !s.seen.Add(record.ID) {
				continue
			}
			select {
			case s.records <- record:
			case <-ctx.Done():
				s.err = ctx.Err()
				return
			}
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			s.err = ctx.Err()
			return
		}
	}
}

// boundedSet remembers the most recent IDs, forgetting the oldest first
type boundedSet struct {
	items map[string]struct{}
	order []string
	limit int
}

func newBoundedSet(limit int) *boundedSet {
	return &boundedSet{items: make(map[string]struct{}, limit), limit: limit}
}

// Add inserts id and reports whether it was new
func (b *boundedSet) Add(id string) bool {
	if _, ok := b.items[id]; ok {
		return false
	}
	if len(b.order) >= b.limit {
		oldest := b.order[0]
		b.order = b.order[1:]
		delete(b.items, oldest)
	}
	b.items[id] = struct{}{}
	b.order = append(b.order, id)
	return true
}
