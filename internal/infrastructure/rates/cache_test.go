package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facture/internal/core/types"
)

type countingSource struct {
	rate  types.Money
	err   error
	calls int
}

func (s *countingSource) GetRate(_ context.Context, _, _ string) (types.Money, error) {
	s.calls++
	if s.err != nil {
		return types.Zero(), s.err
	}
	return s.rate, nil
}

func TestCachedSource_ServesFromCache(t *testing.T) {
	upstream := &countingSource{rate: decimal.RequireFromString("0.85")}
	cached := NewCachedSource(upstream, time.Minute)

	ctx := context.Background()
	rate, err := cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.85")))

	_, err = cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.calls, "second lookup must hit the cache")
}

func TestCachedSource_ExpiresAfterTTL(t *testing.T) {
	upstream := &countingSource{rate: decimal.RequireFromString("0.85")}
	cached := NewCachedSource(upstream, time.Minute)

	current := time.Now()
	cached.now = func() time.Time { return current }

	ctx := context.Background()
	_, err := cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)

	current = current.Add(2 * time.Minute)

	_, err = cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedSource_DistinctPairs(t *testing.T) {
	upstream := &countingSource{rate: decimal.RequireFromString("1.2")}
	cached := NewCachedSource(upstream, time.Minute)

	ctx := context.Background()
	_, err := cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	_, err = cached.GetRate(ctx, "USD", "GBP")
	require.NoError(t, err)

	assert.Equal(t, 2, upstream.calls)
}

func TestCachedSource_FailuresNotCached(t *testing.T) {
	upstream := &countingSource{err: errors.New("upstream down")}
	cached := NewCachedSource(upstream, time.Minute)

	ctx := context.Background()
	_, err := cached.GetRate(ctx, "USD", "EUR")
	require.Error(t, err)

	upstream.err = nil
	upstream.rate = decimal.RequireFromString("0.9")

	rate, err := cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.9")))
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedSource_Invalidate(t *testing.T) {
	upstream := &countingSource{rate: decimal.RequireFromString("0.85")}
	cached := NewCachedSource(upstream, time.Minute)

	ctx := context.Background()
	_, err := cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)

	cached.Invalidate()

	_, err = cached.GetRate(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}
