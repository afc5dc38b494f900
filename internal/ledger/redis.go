package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis is a Ledger backed by one Redis key per event. The reserve path
// runs a Lua script so the capacity check and the increment execute as a
// single atomic step inside the server.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis returns a Redis ledger using the given client. The prefix
// namespaces the counter keys; an empty prefix defaults to "evreg".
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "evreg"
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

func (l *Redis) key(eventID uint64) string {
	return fmt.Sprintf("%s:approved:%d", l.prefix, eventID)
}

// reserveScript checks the counter against capacity and increments it in
// one atomic server-side step. Returns {1, new_count} on success and
// {0, current_count} when the event is full.
var reserveScript = redis.NewScript(`
	local count = tonumber(redis.call('GET', KEYS[1]) or '0')
	local capacity = tonumber(ARGV[1])
	if count >= capacity then
		return {0, count}
	end
	count = redis.call('INCR', KEYS[1])
	return {1, count}
`)

// releaseScript decrements the counter without letting it go negative.
var releaseScript = redis.NewScript(`
	local count = tonumber(redis.call('GET', KEYS[1]) or '0')
	if count <= 0 then
		redis.call('SET', KEYS[1], 0)
		return 0
	end
	return redis.call('DECR', KEYS[1])
`)

// TryReserveSlot implements Ledger.
func (l *Redis) TryReserveSlot(ctx context.Context, eventID uint64, capacity int) (int, error) {
	vals, err := reserveScript.Run(ctx, l.rdb, []string{l.key(eventID)}, capacity).Int64Slice()
	if err != nil {
		return 0, err
	}
	if len(vals) != 2 {
		return 0, fmt.Errorf("ledger: unexpected script result %v", vals)
	}
	if vals[0] != 1 {
		return int(vals[1]), ErrCapacityExceeded
	}
	return int(vals[1]), nil
}

// ReleaseSlot implements Ledger.
func (l *Redis) ReleaseSlot(ctx context.Context, eventID uint64) (int, error) {
	n, err := releaseScript.Run(ctx, l.rdb, []string{l.key(eventID)}).Int64()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// CurrentCount implements Ledger. A missing key reads as zero.
func (l *Redis) CurrentCount(ctx context.Context, eventID uint64) (int, error) {
	n, err := l.rdb.Get(ctx, l.key(eventID)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Sync implements Ledger.
func (l *Redis) Sync(ctx context.Context, eventID uint64, count int) error {
	return l.rdb.Set(ctx, l.key(eventID), count, 0).Err()
}
