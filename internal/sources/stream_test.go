package sources

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/legodeal/legodealbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource returns one scripted batch per poll, then errors
type scriptedSource struct {
	mu      sync.Mutex
	batches [][]models.Record
	final   error
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Poll(ctx context.Context) ([]models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.batches) == 0 {
		return nil, s.final
	}
	batch := s.batches[0]
	s.batches = s.batches[1:]
	return batch, nil
}

func TestStream_OrdersAndDeduplicates(t *testing.T) {
	feedErr := errors.New("feed closed")
	source := &scriptedSource{
		batches: [][]models.Record{
			{{ID: "c", CreatedAt: 3}, {ID: "a", CreatedAt: 1}, {ID: "b", CreatedAt: 2}},
			{{ID: "d", CreatedAt: 4}, {ID: "c", CreatedAt: 3}},
		},
		final: feedErr,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream := NewStream(source, time.Millisecond)
	stream.Start(ctx)

	var ids []string
	for {
		record, err := stream.Next(ctx)
		if err != nil {
			assert.ErrorIs(t, err, feedErr)
			break
		}
		ids = append(ids, record.ID)
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestStream_NextHonoursContext(t *testing.T) {
	source := &scriptedSource{batches: [][]models.Record{{}, {}, {}}}
	stream := NewStream(source, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	stream.Start(ctx)
	cancel()

	_, err := stream.Next(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoundedSet(t *testing.T) {
	set := newBoundedSet(2)

	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("a"))
	assert.True(t, set.Add("b"))
	assert.True(t, set.Add("c")) // evicts "a"
	assert.True(t, set.Add("a"))
	assert.False(t, set.Add("c"))
}
