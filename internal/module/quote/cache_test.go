package quote

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedRepository_ListQuotes_HitKeepsPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := NewMockRepository(testQuote("acme-boiler"))
	repo := NewCachedRepository(inner, client, time.Minute, nil, nil)

	first, err := repo.ListQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, inner.lists)

	// Second read is served from the cache and must still carry the
	// full payload, not just the key field.
	second, err := repo.ListQuotes(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, inner.lists)

	record := second[0].Record()
	assert.Equal(t, "acme-boiler", record["compNameOfferering"])
	assert.Equal(t, float64(1200), record["price"])
	assert.Equal(t, "GBP", record["currency"])
}

func TestCachedRepository_ListQuotes_ExpiredEntryRefetches(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := NewMockRepository(testQuote("acme-boiler"))
	repo := NewCachedRepository(inner, client, time.Minute, nil, nil)

	_, err := repo.ListQuotes(context.Background())
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = repo.ListQuotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lists)
}

func TestCachedRepository_ListQuotes_FallsThroughWhenCacheUnavailable(t *testing.T) {
	inner := NewMockRepository(testQuote("acme-boiler"))
	// Nothing listens here; every cache call fails.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	repo := NewCachedRepository(inner, client, 0, nil, nil)

	quotes, err := repo.ListQuotes(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Equal(t, 1, inner.lists)
}

func TestCachedRepository_GetQuote_BypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := NewMockRepository(testQuote("acme-boiler"))
	repo := NewCachedRepository(inner, client, 0, nil, nil)

	quote, err := repo.GetQuote(context.Background(), "acme-boiler")
	require.NoError(t, err)
	assert.Equal(t, "acme-boiler", quote.CompNameOffering)

	_, err = repo.GetQuote(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}
