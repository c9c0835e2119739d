package quote

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mysterie/creditgate/internal/shared/metrics"
)

const listCacheKey = "quotes:all"

// cacheEntry is the cache wire form of a quote. The API model keeps the
// payload out of direct JSON encoding, so the cache has to carry it
// explicitly or hits would come back stripped to the key field.
type cacheEntry struct {
	CompNameOffering string          `json:"compNameOfferering"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}

func toCacheEntries(quotes []Quote) []cacheEntry {
	entries := make([]cacheEntry, len(quotes))
	for i, q := range quotes {
		entries[i] = cacheEntry{CompNameOffering: q.CompNameOffering, Payload: q.Payload}
	}
	return entries
}

func fromCacheEntries(entries []cacheEntry) []Quote {
	quotes := make([]Quote, len(entries))
	for i, e := range entries {
		quotes[i] = Quote{CompNameOffering: e.CompNameOffering, Payload: e.Payload}
	}
	return quotes
}

// cachedRepository adds a Redis read-through cache in front of the
// quote listing. Single-quote lookups always hit the store. Cache
// failures fall through to the store; they never fail a request.
type cachedRepository struct {
	inner   Repository
	redis   redis.UniversalClient
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCachedRepository wraps a repository with a Redis read-through
// cache for the full listing.
func NewCachedRepository(inner Repository, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) Repository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cachedRepository{
		inner:   inner,
		redis:   client,
		ttl:     ttl,
		logger:  logger,
		metrics: m,
	}
}

func (r *cachedRepository) GetQuote(ctx context.Context, compNameOffering string) (*Quote, error) {
	return r.inner.GetQuote(ctx, compNameOffering)
}

func (r *cachedRepository) ListQuotes(ctx context.Context) ([]Quote, error) {
	data, err := r.redis.Get(ctx, listCacheKey).Bytes()
	if err == nil {
		var entries []cacheEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			r.countHit()
			return fromCacheEntries(entries), nil
		}
		r.logger.Warn("quote cache entry corrupt", zap.Error(err))
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("quote cache read failed", zap.Error(err))
	}
	r.countMiss()

	quotes, err := r.inner.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(toCacheEntries(quotes)); err == nil {
		if err := r.redis.Set(ctx, listCacheKey, data, r.ttl).Err(); err != nil {
			r.logger.Warn("quote cache write failed", zap.Error(err))
		}
	}

	return quotes, nil
}

func (r *cachedRepository) countHit() {
	if r.metrics != nil {
		r.metrics.CacheHitsTotal.WithLabelValues("quotes").Inc()
	}
}

func (r *cachedRepository) countMiss() {
	if r.metrics != nil {
		r.metrics.CacheMissesTotal.WithLabelValues("quotes").Inc()
	}
}

// Compile-time check
var _ Repository = (*cachedRepository)(nil)
