package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// noHoliday marks a cached miss so empty days don't hit Postgres again.
const noHoliday = "none"

// CachedStore is a read-through Redis cache in front of another Store.
// Redis failures are logged and fall through to the wrapped store.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "holiday_cache").Logger(),
	}
}

func cacheKey(date time.Time, country string) string {
	return fmt.Sprintf("holiday:%s:%s", country, DateKey(date))
}

func (c *CachedStore) FindHoliday(ctx context.Context, date time.Time, country string) (*Holiday, error) {
	key := cacheKey(date, country)

	raw, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if raw == noHoliday {
			return nil, ErrHolidayNotFound
		}
		var h Holiday
		if jsonErr := json.Unmarshal([]byte(raw), &h); jsonErr == nil {
			return &h, nil
		}
		c.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.Warn().Err(err).Str("key", key).Msg("holiday cache read failed")
	}

	h, err := c.next.FindHoliday(ctx, date, country)
	if err != nil && !errors.Is(err, ErrHolidayNotFound) {
		return nil, err
	}

	value := noHoliday
	if h != nil {
		data, mErr := json.Marshal(h)
		if mErr != nil {
			return h, nil
		}
		value = string(data)
	}
	if setErr := c.client.Set(ctx, key, value, c.ttl).Err(); setErr != nil {
		c.logger.Warn().Err(setErr).Str("key", key).Msg("holiday cache write failed")
	}

	return h, err
}

func (c *CachedStore) FindRecurringHolidays(ctx context.Context, country string) ([]Holiday, error) {
	return c.next.FindRecurringHolidays(ctx, country)
}

func (c *CachedStore) UpsertHoliday(ctx context.Context, h *Holiday) (UpsertOutcome, error) {
	outcome, err := c.next.UpsertHoliday(ctx, h)
	if err != nil {
		return outcome, err
	}
	c.invalidate(ctx, h)
	return outcome, nil
}

func (c *CachedStore) CreateHoliday(ctx context.Context, h *Holiday) (bool, error) {
	created, err := c.next.CreateHoliday(ctx, h)
	if err != nil {
		return created, err
	}
	if created {
		c.invalidate(ctx, h)
	}
	return created, nil
}

func (c *CachedStore) ExistsInYear(ctx context.Context, name, country string, year int) (bool, error) {
	return c.next.ExistsInYear(ctx, name, country, year)
}

func (c *CachedStore) invalidate(ctx context.Context, h *Holiday) {
	key := cacheKey(h.Date, h.Country)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("holiday cache invalidation failed")
	}
}
