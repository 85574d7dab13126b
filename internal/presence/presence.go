package presence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "display:presence:"

// Tracker mirrors display heartbeats into Redis with a TTL, so ops tooling
// can list displays seen recently without the in-memory heartbeat map ever
// being pruned on the hot path. Entries expire on their own; resolution
// never reads them.
type Tracker struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewTracker creates a presence tracker. Entries live for ttl after the
// last heartbeat.
func NewTracker(redisClient *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Touch refreshes the presence entry for a display. A nil tracker is a
// disabled mirror and records nothing.
func (t *Tracker) Touch(ctx context.Context, displayID string) error {
	if t == nil {
		return nil
	}
	key := keyPrefix + displayID
	if err := t.redis.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to record presence for %s: %w", displayID, err)
	}
	return nil
}

// Active returns the ids of displays whose presence entry has not expired.
func (t *Tracker) Active(ctx context.Context) ([]string, error) {
	var ids []string
	var cursor uint64

	for {
		keys, next, err := t.redis.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan presence keys: %w", err)
		}
		for _, key := range keys {
			ids = append(ids, strings.TrimPrefix(key, keyPrefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(ids)
	return ids, nil
}

// LastSeen returns the recorded heartbeat time for a display, or false when
// its entry has expired.
func (t *Tracker) LastSeen(ctx context.Context, displayID string) (time.Time, bool, error) {
	val, err := t.redis.Get(ctx, keyPrefix+displayID).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read presence for %s: %w", displayID, err)
	}

	at, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed presence entry for %s: %w", displayID, err)
	}
	return at, true, nil
}
