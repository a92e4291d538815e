package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoclick/clicktracker/internal/core/domain"
)

func setupSessionStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewSessionStore(client), mr
}

func newSession(id string, ttl time.Duration) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{ID: id, Username: "alice", IsAdmin: true, CreatedAt: now, ExpiresAt: now.Add(ttl)}
}

func TestSessionStore_CreateGetDelete(t *testing.T) {
	store, mr := setupSessionStore(t)
	ctx := context.Background()
	session := newSession("sid-1", time.Hour)

	require.NoError(t, store.Create(ctx, session))
	assert.True(t, mr.Exists("session:sid-1"))
	assert.Greater(t, mr.TTL("session:sid-1"), 50*time.Minute)

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsAdmin)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Delete(ctx, "sid-1"))
	_, err = store.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "sid-1"), domain.ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store, mr := setupSessionStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession("sid-2", time.Minute)))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "sid-2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessionStore_RejectsExpiredSession(t *testing.T) {
	store, _ := setupSessionStore(t)

	err := store.Create(context.Background(), newSession("sid-3", -time.Minute))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSessionStore_Unavailable(t *testing.T) {
	store, mr := setupSessionStore(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, newSession("sid-4", time.Hour)))

	mr.Close()

	_, err := store.Get(ctx, "sid-4")
	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorIs(t, store.Delete(ctx, "sid-4"), domain.ErrPersistence)
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
