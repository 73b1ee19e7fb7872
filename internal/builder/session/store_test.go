package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "session:missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "session:a", "one", time.Hour))
	val, err := store.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.Equal(t, "one", val)

	require.NoError(t, store.Set(ctx, "session:a", "two", time.Hour))
	val, _ = store.Get(ctx, "session:a")
	assert.Equal(t, "two", val)

	require.NoError(t, store.Append(ctx, "events", "e1", 0))
	require.NoError(t, store.Append(ctx, "events", "e2", 0))
	list, err := store.Range(ctx, "events", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, list)

	// capped appends keep only the newest entries
	for _, e := range []string{"c1", "c2", "c3", "c4"} {
		require.NoError(t, store.Append(ctx, "capped", e, 3))
	}
	list, err = store.Range(ctx, "capped", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c2", "c3", "c4"}, list)

	tail, err := store.Range(ctx, "capped", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c4"}, tail)

	empty, err := store.Range(ctx, "no-such-list", 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, store.Delete(ctx, "session:a"))
	_, err = store.Get(ctx, "session:a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Contract(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	storeContract(t, NewRedisStore(client, 0))
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "session:x", "v", time.Minute))
	require.NoError(t, store.Append(ctx, "analytics:events", "e", 100))
	assert.Equal(t, 10*time.Minute, mr.TTL("analytics:events"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "session:x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Errors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()
	boom := errors.New("connection refused")

	mock.ExpectGet("session:x").SetErr(boom)
	_, err := store.Get(ctx, "session:x")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectRPush("events", "e").SetVal(1)
	mock.ExpectExpire("events", time.Minute).SetErr(boom)
	assert.ErrorIs(t, store.Append(ctx, "events", "e", 0), boom)

	mock.ExpectRPush("events", "e").SetVal(1)
	mock.ExpectLTrim("events", -10, -1).SetErr(boom)
	assert.ErrorIs(t, store.Append(ctx, "events", "e", 10), boom)

	mock.ExpectLRange("events", -5, -1).SetErr(boom)
	_, err = store.Range(ctx, "events", 5)
	assert.ErrorIs(t, err, boom)

	mock.ExpectDel("session:x").SetErr(boom)
	assert.ErrorIs(t, store.Delete(ctx, "session:x"), boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Set(ctx, "forever", "v", 0))

	now = now.Add(time.Minute)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "forever")
	assert.NoError(t, err)
}
