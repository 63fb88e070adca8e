package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const idleKey = "golf_idle"

// IdleSet schedules idle deadlines in a Redis sorted set scored by unix time.
type IdleSet struct {
	rdb *redis.Client
}

func NewIdleSet(rdb *redis.Client) *IdleSet {
	return &IdleSet{rdb: rdb}
}

// Touch moves the session's idle deadline.
func (s *IdleSet) Touch(ctx context.Context, sessionID string, deadline time.Time) error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.ZAdd(ctx, idleKey, redis.Z{Score: float64(deadline.Unix()), Member: sessionID}).Err()
}

// Due lists sessions whose deadline is at or before now.
func (s *IdleSet) Due(ctx context.Context, now time.Time) ([]string, error) {
	if s == nil || s.rdb == nil {
		return nil, nil
	}
	return s.rdb.ZRangeByScore(ctx, idleKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
}

// Claim removes the session from the set. Only the caller that actually
// removed it gets true, so concurrent workers never both act.
func (s *IdleSet) Claim(ctx context.Context, sessionID string) (bool, error) {
	if s == nil || s.rdb == nil {
		return false, nil
	}
	removed, err := s.rdb.ZRem(ctx, idleKey, sessionID).Result()
	return removed > 0, err
}

func (s *IdleSet) Forget(ctx context.Context, sessionID string) error {
	_, err := s.Claim(ctx, sessionID)
	return err
}
