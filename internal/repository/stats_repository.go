package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	downloadsKey = "culib:stats:downloads"
	visitorsKey  = "culib:stats:visitors"
)

// StatsRepository stores usage counters in Redis. Counters survive restarts
// and increments are atomic, so concurrent tracking requests cannot lose
// updates.
type StatsRepository struct {
	client *redis.Client
}

// NewStatsRepository creates a new repository instance.
func NewStatsRepository(client *redis.Client) *StatsRepository {
	return &StatsRepository{client: client}
}

// IncrementDownloads bumps the per-document download counter, creating it at
// zero when unseen.
func (r *StatsRepository) IncrementDownloads(ctx context.Context, documentID int) error {
	if err := r.client.HIncrBy(ctx, downloadsKey, strconv.Itoa(documentID), 1).Err(); err != nil {
		return fmt.Errorf("increment downloads: %w", err)
	}
	return nil
}

// IncrementUniqueVisitors bumps the global visitor counter.
func (r *StatsRepository) IncrementUniqueVisitors(ctx context.Context) error {
	if err := r.client.Incr(ctx, visitorsKey).Err(); err != nil {
		return fmt.Errorf("increment visitors: %w", err)
	}
	return nil
}

// Downloads returns the counter for a single document.
func (r *StatsRepository) Downloads(ctx context.Context, documentID int) (int64, error) {
	val, err := r.client.HGet(ctx, downloadsKey, strconv.Itoa(documentID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get downloads: %w", err)
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse downloads counter: %w", err)
	}
	return count, nil
}

// AllDownloads returns every per-document download counter.
func (r *StatsRepository) AllDownloads(ctx context.Context) (map[int]int64, error) {
	raw, err := r.client.HGetAll(ctx, downloadsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("get all downloads: %w", err)
	}
	counters := make(map[int]int64, len(raw))
	for field, val := range raw {
		id, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		count, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		counters[id] = count
	}
	return counters, nil
}

// UniqueVisitors returns the global visitor counter.
func (r *StatsRepository) UniqueVisitors(ctx context.Context) (int64, error) {
	val, err := r.client.Get(ctx, visitorsKey).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get visitors: %w", err)
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse visitors counter: %w", err)
	}
	return count, nil
}

// GetCached returns a cached payload by key, reporting a miss as ("", false).
func (r *StatsRepository) GetCached(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get cached payload: %w", err)
	}
	return val, true, nil
}

// SetCached stores a payload under key with a TTL.
func (r *StatsRepository) SetCached(ctx context.Context, key, payload string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("set cached payload: %w", err)
	}
	return nil
}
