package ledger

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisLedger keeps one set per (subscriber, day) plus a sorted index of
// those keys scored by day, which drives pruning.
type RedisLedger struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisLedger(rdb redis.UniversalClient, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = "verse-courier"
	}
	return &RedisLedger{rdb: rdb, prefix: prefix}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

func (l *RedisLedger) setKey(subscriberID, day string) string {
	return l.prefix + ":sent:" + subscriberID + ":" + day
}

func (l *RedisLedger) indexKey() string {
	return l.prefix + ":sent:days"
}

func dayScore(day string) (float64, error) {
	d, err := parseDay(day)
	if err != nil {
		return 0, err
	}
	return float64(d.Unix() / 86400), nil
}

func (l *RedisLedger) Get(ctx context.Context, subscriberID, day string) (map[string]struct{}, error) {
	members, err := l.rdb.SMembers(ctx, l.setKey(subscriberID, day)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading sent set: %w", err)
	}
	out := make(map[string]struct{}, len(members))
	for _, m := range members {
		out[m] = struct{}{}
	}
	return out, nil
}

func (l *RedisLedger) Append(ctx context.Context, subscriberID, day, ref string) error {
	score, err := dayScore(day)
	if err != nil {
		return err
	}
	key := l.setKey(subscriberID, day)

	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, ref)
		pipe.ZAdd(ctx, l.indexKey(), redis.Z{Score: score, Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording sent passage: %w", err)
	}

	cutoff := score - RetentionDays
	stale, err := l.rdb.ZRangeByScore(ctx, l.indexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatFloat(cutoff, 'f', 0, 64),
	}).Result()
	if err != nil {
		return fmt.Errorf("listing stale sent sets: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	members := make([]interface{}, len(stale))
	for i, k := range stale {
		members[i] = k
	}
	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, stale...)
		pipe.ZRem(ctx, l.indexKey(), members...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("pruning sent sets: %w", err)
	}
	return nil
}
