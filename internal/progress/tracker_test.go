package progress

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/legodeal/legodealbot/internal/models"
	"github.com/legodeal/legodealbot/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStorage is a mock implementation of the storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, name string, data []byte) error {
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockStorage) Retrieve(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, name string) error {
	args := m.Called(name)
	return args.Error(0)
}

// memoryStorage keeps objects in a map
type memoryStorage struct {
	data map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string][]byte)}
}

func (m *memoryStorage) Store(_ context.Context, name string, data []byte) error {
	m.data[name] = append([]byte(nil), data...)
	return nil
}

func (m *memoryStorage) Retrieve(_ context.Context, name string) ([]byte, error) {
	if data, ok := m.data[name]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", name, storage.ErrNotFound)
}

func (m *memoryStorage) Delete(_ context.Context, name string) error {
	delete(m.data, name)
	return nil
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name      string
		createdAt float64
		marker    float64
		ok        bool
		expected  bool
	}{
		{name: "Equal timestamp is already seen", createdAt: 1000.0, marker: 1000.0, ok: true, expected: false},
		{name: "Older record", createdAt: 999.9, marker: 1000.0, ok: true, expected: false},
		{name: "Newer record", createdAt: 1000.5, marker: 1000.0, ok: true, expected: true},
		{name: "No marker, old record", createdAt: 1, ok: false, expected: true},
		{name: "No marker, zero timestamp", createdAt: 0, ok: false, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := models.Record{CreatedAt: tt.createdAt}
			assert.Equal(t, tt.expected, IsNewer(record, tt.marker, tt.ok))
		})
	}
}

func TestTracker_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newMemoryStorage(), "last_seen")

	_, ok := tracker.LoadMarker(ctx)
	assert.False(t, ok, "first run has no marker")

	for _, ts := range []float64{1000, 1700000000.25, 1712345678.123456, 0.1} {
		require.NoError(t, tracker.RecordSeen(ctx, models.Record{CreatedAt: ts}))
		marker, ok := tracker.LoadMarker(ctx)
		require.True(t, ok)
		assert.Equal(t, ts, marker)
	}
}

func TestTracker_Reset(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(newMemoryStorage(), "last_seen")

	require.NoError(t, tracker.RecordSeen(ctx, models.Record{CreatedAt: 1000}))
	require.NoError(t, tracker.Reset(ctx))

	_, ok := tracker.LoadMarker(ctx)
	assert.False(t, ok)
}

func TestTracker_LoadMarkerFailsOpen(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{name: "Storage error", err: errors.New("connection reset")},
		{name: "Garbage contents", data: []byte("yesterday")},
		{name: "Empty contents", data: []byte("  \n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockStorage{}
			store.On("Retrieve", "last_seen").Return(tt.data, tt.err)

			_, ok := NewTracker(store, "last_seen").LoadMarker(context.Background())
			assert.False(t, ok)
			store.AssertExpectations(t)
		})
	}
}

func TestTracker_LoadMarkerTrimsWhitespace(t *testing.T) {
	store := &MockStorage{}
	store.On("Retrieve", "last_seen").Return([]byte("1000.0\n"), nil)

	marker, ok := NewTracker(store, "last_seen").LoadMarker(context.Background())
	require.True(t, ok)
	assert.Equal(t, 1000.0, marker)
}

func TestTracker_RecordSeenWritesDecimal(t *testing.T) {
	store := &MockStorage{}
	store.On("Store", "last_seen", []byte("1712345678.5")).Return(nil)

	err := NewTracker(store, "last_seen").RecordSeen(context.Background(), models.Record{CreatedAt: 1712345678.5})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestTracker_RecordSeenError(t *testing.T) {
	store := &MockStorage{}
	store.On("Store", "last_seen", mock.Anything).Return(errors.New("disk full"))

	err := NewTracker(store, "last_seen").RecordSeen(context.Background(), models.Record{CreatedAt: 1})
	assert.ErrorContains(t, err, "disk full")
}
