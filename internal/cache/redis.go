package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ResultsCache keeps a per-poll total counter at poll:{id}:total and an
// option_id -> count hash at poll:{id}:options. It is a read-through
// cache over the vote ledger and may be evicted at any time.
type ResultsCache struct {
	client *redis.Client
}

func New(ctx context.Context, url string) (*ResultsCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	c := redis.NewClient(opts)

	if err := c.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &ResultsCache{client: c}, nil
}

func keys(pollID int64) (totalKey, optionsKey string) {
	return fmt.Sprintf("poll:%d:total", pollID), fmt.Sprintf("poll:%d:options", pollID)
}

// Ready reports whether both keys exist. A counter without a mapping (or
// the reverse) is treated as cold so deltas never build on partial state.
func (c *ResultsCache) Ready(ctx context.Context, pollID int64) (bool, error) {
	totalKey, optionsKey := keys(pollID)
	n, err := c.client.Exists(ctx, totalKey, optionsKey).Result()
	if err != nil {
		return false, err
	}
	return n == 2, nil
}

func (c *ResultsCache) Counts(ctx context.Context, pollID int64) (map[int64]int64, int64, bool, error) {
	totalKey, optionsKey := keys(pollID)

	raw, err := c.client.HGetAll(ctx, optionsKey).Result()
	if err != nil {
		return nil, 0, false, err
	}

	counts := make(map[int64]int64, len(raw))
	for field, val := range raw {
		optionID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, 0, false, fmt.Errorf("bad option field %q: %w", field, err)
		}
		count, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, 0, false, fmt.Errorf("bad count for option %s: %w", field, err)
		}
		counts[optionID] = count
	}

	totalStr, err := c.client.Get(ctx, totalKey).Result()
	if err == redis.Nil {
		return counts, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return nil, 0, false, fmt.Errorf("bad total: %w", err)
	}

	return counts, total, true, nil
}

// Store populates both keys from a full recompute. An empty mapping is
// not written: a hash with no fields is indistinguishable from an absent
// one, which would break the two-key readiness check.
func (c *ResultsCache) Store(ctx context.Context, pollID int64, counts map[int64]int64, total int64) error {
	totalKey, optionsKey := keys(pollID)

	pipe := c.client.Pipeline()
	if len(counts) > 0 {
		fields := make(map[string]any, len(counts))
		for optionID, count := range counts {
			fields[strconv.FormatInt(optionID, 10)] = count
		}
		pipe.HSet(ctx, optionsKey, fields)
	}
	pipe.Set(ctx, totalKey, total, 0)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *ResultsCache) StoreTotal(ctx context.Context, pollID int64, total int64) error {
	totalKey, _ := keys(pollID)
	return c.client.Set(ctx, totalKey, total, 0).Err()
}

func (c *ResultsCache) AddVote(ctx context.Context, pollID, optionID int64) error {
	totalKey, optionsKey := keys(pollID)

	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, optionsKey, strconv.FormatInt(optionID, 10), 1)
	pipe.Incr(ctx, totalKey)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *ResultsCache) SwitchVote(ctx context.Context, pollID, fromOption, toOption int64) error {
	_, optionsKey := keys(pollID)

	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, optionsKey, strconv.FormatInt(fromOption, 10), -1)
	pipe.HIncrBy(ctx, optionsKey, strconv.FormatInt(toOption, 10), 1)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *ResultsCache) RemoveVote(ctx context.Context, pollID, optionID int64) error {
	totalKey, optionsKey := keys(pollID)

	pipe := c.client.Pipeline()
	pipe.HIncrBy(ctx, optionsKey, strconv.FormatInt(optionID, 10), -1)
	pipe.Decr(ctx, totalKey)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *ResultsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ResultsCache) Close() error {
	return c.client.Close()
}
