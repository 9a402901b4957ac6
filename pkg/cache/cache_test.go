package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
}

func TestMemoryCacheTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "eval:Daily", []row{{"NVDA", 1.2}}, time.Minute))

	var got []row
	require.NoError(t, mc.Get(ctx, "eval:Daily", &got))
	assert.Equal(t, []row{{"NVDA", 1.2}}, got)

	var s string
	require.NoError(t, mc.Set(ctx, "plain", "value", time.Minute))
	require.NoError(t, mc.Get(ctx, "plain", &s))
	assert.Equal(t, "value", s)
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	var got row
	assert.ErrorIs(t, mc.Get(ctx, "absent", &got), ErrCacheMiss)

	require.NoError(t, mc.Set(ctx, "k", row{Symbol: "AAPL"}, time.Second))
	now = now.Add(2 * time.Second)
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()

	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { now = now.Add(time.Millisecond); return now }

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	ok, _ := mc.Exists(ctx, "b")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "a", "c")
	assert.True(t, ok)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	mc := NewMemoryCache()
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, GenerateKeyWithParams("eval", "Daily", 1), 1, time.Minute))
	require.NoError(t, mc.Set(ctx, GenerateKeyWithParams("eval", "M1", 2), 2, time.Minute))
	require.NoError(t, mc.Set(ctx, "other:key", 3, time.Minute))

	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("eval:")))

	assert.Equal(t, 1, mc.Len())
	ok, _ := mc.Exists(ctx, "other:key")
	assert.True(t, ok)
}

func TestLayeredCachePromotesFromRemote(t *testing.T) {
	ctx := context.Background()
	remote := NewMemoryCache()
	lc := NewLayeredCache(remote, WithLayeredMemoryTTL(time.Minute))
	defer lc.Close()

	require.NoError(t, remote.Set(ctx, "eval:x", row{Symbol: "TSLA", Score: -1.5}, time.Hour))

	var got row
	require.NoError(t, lc.Get(ctx, "eval:x", &got))
	assert.Equal(t, "TSLA", got.Symbol)

	require.NoError(t, remote.Delete(ctx, "eval:x"))
	got = row{}
	require.NoError(t, lc.Get(ctx, "eval:x", &got), "second read should be served by L1")
	assert.Equal(t, -1.5, got.Score)

	require.NoError(t, lc.DeleteByPattern(ctx, "eval:*"))
	assert.ErrorIs(t, lc.Get(ctx, "eval:x", &got), ErrCacheMiss)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "eval:Daily:40:30:30:0:0:739169",
		GenerateKeyWithParams("eval", "Daily", 40, 30, 30, 0, 0, 739169))
	assert.Equal(t, "eval:*", BuildPattern("eval:"))
}
