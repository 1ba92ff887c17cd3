package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &localLocker{leases: map[string]lease{}, now: func() time.Time { return now }}

	token, ok, err := l.TryLock(ctx, "stock:reconcile", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = l.TryLock(ctx, "stock:reconcile", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, l.Release(ctx, "stock:reconcile", "someone-else"))
	_, ok, _ = l.TryLock(ctx, "stock:reconcile", time.Minute)
	assert.False(t, ok, "foreign token must not release the lease")

	require.NoError(t, l.Release(ctx, "stock:reconcile", token))
	_, ok, _ = l.TryLock(ctx, "stock:reconcile", time.Minute)
	assert.True(t, ok)
}

func TestLocalLockerExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := &localLocker{leases: map[string]lease{}, now: func() time.Time { return now }}

	_, ok, _ := l.TryLock(ctx, "k", time.Second)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = l.TryLock(ctx, "k", time.Second)
	assert.True(t, ok)
}

func TestValidate(t *testing.T) {
	_, _, err := NewLocal().TryLock(context.Background(), "", time.Second)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, _, err = NewLocal().TryLock(context.Background(), "k", 0)
	assert.ErrorIs(t, err, ErrInvalidTTL)
}
