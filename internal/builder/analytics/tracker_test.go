package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"application-builder/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listStore struct {
	mu    sync.Mutex
	lists  map[string][]string
	err    error
	maxLen int
	ranged int
}

func newListStore() *listStore { return &listStore{lists: map[string][]string{}} }

func (s *listStore) Append(_ context.Context, key, value string, maxLen int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.maxLen = maxLen
	s.lists[key] = append(s.lists[key], value)
	return nil
}

func (s *listStore) Range(_ context.Context, key string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranged = n
	list := s.lists[key]
	if n > 0 && len(list) > n {
		list = list[len(list)-n:]
	}
	return append([]string{}, list...), s.err
}

func TestTrack_AppendsAndReadsBack(t *testing.T) {
	store := newListStore()
	tracker := NewTracker(store, logger.NewTestLogger(t))
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return fixed }

	ctx := context.Background()
	tracker.Track(ctx, Event{Name: EventWizardStarted, SessionID: "s1"})
	tracker.Track(ctx, Event{Name: EventStepChanged, SessionID: "s1", Properties: map[string]interface{}{"to": "cover-letter"}})
	tracker.Track(ctx, Event{Name: EventApplicationSubmitted, SessionID: "s1"})

	all, err := tracker.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, EventWizardStarted, all[0].Name)
	assert.Equal(t, fixed, all[0].Timestamp)
	assert.Equal(t, "cover-letter", all[1].Properties["to"])

	last, err := tracker.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, EventStepChanged, last[0].Name)
	assert.Equal(t, EventApplicationSubmitted, last[1].Name)
}

func TestTrack_UnknownEventDropped(t *testing.T) {
	store := newListStore()
	tracker := NewTracker(store, logger.NewTestLogger(t))

	tracker.Track(context.Background(), Event{Name: "page_view"})

	assert.Empty(t, store.lists[EventsKey])
}

func TestTrack_StoreFailureIsSwallowed(t *testing.T) {
	store := newListStore()
	store.err = errors.New("store down")
	tracker := NewTracker(store, logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		tracker.Track(context.Background(), Event{Name: EventWizardCancelled})
	})
	_, err := tracker.Recent(context.Background(), 1)
	assert.Error(t, err)
}

func TestTrack_NilTracker(t *testing.T) {
	var tracker *Tracker
	assert.NotPanics(t, func() {
		tracker.Track(context.Background(), Event{Name: EventWizardStarted})
	})
}

func TestTrack_BoundsListAndReads(t *testing.T) {
	store := newListStore()
	tracker := NewTracker(store, logger.NewTestLogger(t))
	ctx := context.Background()

	tracker.Track(ctx, Event{Name: EventWizardStarted, SessionID: "s1"})
	assert.Equal(t, MaxEvents, store.maxLen)

	_, err := tracker.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxEvents, store.ranged)

	_, err = tracker.Recent(ctx, MaxEvents*2)
	require.NoError(t, err)
	assert.Equal(t, MaxEvents, store.ranged)

	_, err = tracker.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, store.ranged)
}
