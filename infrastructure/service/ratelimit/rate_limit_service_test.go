package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// fakeCounterStore mimics an expiring key-value store with a controllable
// clock so window expiry can be exercised without sleeping.
type fakeCounterStore struct {
	now     time.Time
	entries map[string]*fakeEntry
}

type fakeEntry struct {
	value     int64
	expiresAt time.Time
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		entries: make(map[string]*fakeEntry),
	}
}

func (f *fakeCounterStore) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fakeCounterStore) lookup(key string) *fakeEntry {
	entry, ok := f.entries[key]
	if !ok {
		return nil
	}
	if !f.now.Before(entry.expiresAt) {
		delete(f.entries, key)
		return nil
	}
	return entry
}

func (f *fakeCounterStore) Get(_ context.Context, key string) (int64, bool, error) {
	entry := f.lookup(key)
	if entry == nil {
		return 0, false, nil
	}
	return entry.value, true, nil
}

func (f *fakeCounterStore) Increment(_ context.Context, key string) (int64, error) {
	entry := f.lookup(key)
	if entry == nil {
		// Mirrors INCR on a missing key, expiry handling aside.
		f.entries[key] = &fakeEntry{value: 1, expiresAt: f.now.Add(24 * time.Hour)}
		return 1, nil
	}
	entry.value++
	return entry.value, nil
}

func (f *fakeCounterStore) SetWithExpiry(_ context.Context, key string, value int64, ttl time.Duration) error {
	f.entries[key] = &fakeEntry{value: value, expiresAt: f.now.Add(ttl)}
	return nil
}

func newTestService(store *fakeCounterStore, maxOrigin, maxIdentity int) *Service {
	return NewService(store, Config{
		Window:         time.Minute,
		MaxPerOrigin:   maxOrigin,
		MaxPerIdentity: maxIdentity,
	}, logger.NewNopLogger())
}

func TestAllow_FirstRequestAnchorsWindow(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := newTestService(store, 10, 10)

	err := svc.Allow(ctx, "203.0.113.9", 7)

	require.NoError(t, err)
	entry := store.entries["rl:ip:203.0.113.9"]
	require.NotNil(t, entry)
	assert.Equal(t, int64(1), entry.value)
	assert.Equal(t, store.now.Add(time.Minute), entry.expiresAt)
}

func TestAllow_RejectsAtOriginCeilingWithoutIncrementing(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := newTestService(store, 3, 100)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))
	}

	err := svc.Allow(ctx, "203.0.113.9", 7)

	assert.True(t, apperror.IsKind(err, apperror.KindTooManyRequests), "expected TooManyRequests, got %v", err)
	// A rejected request leaves the counter untouched.
	assert.Equal(t, int64(3), store.entries["rl:ip:203.0.113.9"].value)
}

func TestAllow_OriginRejectionSkipsIdentityCounter(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := newTestService(store, 1, 100)

	require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))
	identityBefore := store.entries["rl:user:7"].value

	err := svc.Allow(ctx, "203.0.113.9", 7)

	assert.True(t, apperror.IsKind(err, apperror.KindTooManyRequests))
	assert.Equal(t, identityBefore, store.entries["rl:user:7"].value)
}

func TestAllow_IdentityCeilingIndependentOfOrigin(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := newTestService(store, 100, 2)

	// Same identity from two origins shares one identity counter.
	require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))
	require.NoError(t, svc.Allow(ctx, "198.51.100.4", 7))

	err := svc.Allow(ctx, "192.0.2.1", 7)

	assert.True(t, apperror.IsKind(err, apperror.KindTooManyRequests), "expected TooManyRequests, got %v", err)
}

func TestAllow_WindowExpiryResetsCounter(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := newTestService(store, 100, 2)

	require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))
	require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))
	err := svc.Allow(ctx, "203.0.113.9", 7)
	require.True(t, apperror.IsKind(err, apperror.KindTooManyRequests))

	store.advance(61 * time.Second)

	err = svc.Allow(ctx, "203.0.113.9", 7)

	require.NoError(t, err)
	assert.Equal(t, int64(1), store.entries["rl:user:7"].value)
}

func TestAllow_LaterRequestsDoNotExtendWindow(t *testing.T) {
	ctx := context.Background()
	store := newFakeCounterStore()
	svc := newTestService(store, 100, 100)

	require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))
	anchored := store.entries["rl:ip:203.0.113.9"].expiresAt

	store.advance(30 * time.Second)
	require.NoError(t, svc.Allow(ctx, "203.0.113.9", 7))

	assert.Equal(t, anchored, store.entries["rl:ip:203.0.113.9"].expiresAt)
}
