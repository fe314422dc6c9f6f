package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/apperror"
	"facture/internal/core/id"
)

func TestStorePutAndGet(t *testing.T) {
	store := NewStore(time.Hour)

	d := New("USD")
	store.Put(d)

	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreGetUnknownID(t *testing.T) {
	store := NewStore(time.Hour)

	_, err := store.Get(id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestStoreDelete(t *testing.T) {
	store := NewStore(time.Hour)

	d := New("USD")
	store.Put(d)
	store.Delete(d.ID)

	_, err := store.Get(d.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, store.Len())

	// Deleting again is a no-op
	store.Delete(d.ID)
}

func TestStoreEvictsIdleSessions(t *testing.T) {
	store := NewStore(time.Hour)

	current := time.Now()
	store.now = func() time.Time { return current }

	stale := New("USD")
	store.Put(stale)

	// Idle past the TTL
	current = current.Add(2 * time.Hour)

	fresh := New("EUR")
	store.Put(fresh)

	_, err := store.Get(stale.ID)
	assert.Error(t, err)

	got, err := store.Get(fresh.ID)
	require.NoError(t, err)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, store.Len())
}

func TestStoreGetRefreshesIdleTimer(t *testing.T) {
	store := NewStore(time.Hour)

	current := time.Now()
	store.now = func() time.Time { return current }

	d := New("USD")
	store.Put(d)

	// Touch the draft shortly before it would expire
	current = current.Add(50 * time.Minute)
	_, err := store.Get(d.ID)
	require.NoError(t, err)

	// Another near-TTL interval: still alive thanks to the refresh
	current = current.Add(50 * time.Minute)
	got, err := store.Get(d.ID)
	require.NoError(t, err)
	assert.Same(t, d, got)
}

func TestStoreDefaultTTL(t *testing.T) {
	store := NewStore(0)
	assert.Equal(t, DefaultSessionTTL, store.ttl)

	store = NewStore(-time.Minute)
	assert.Equal(t, DefaultSessionTTL, store.ttl)
}
