package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/rentdesk/internal/entity"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultInflightTTL = 15 * time.Second

// Guard admits one status change per booking at a time. Acquire fails with
// entity.ErrTransitionInFlight while another holder is active.
type Guard interface {
	Acquire(ctx context.Context, bookingID string) (release func(), err error)
}

type memoryHolder struct {
	token   uint64
	expires time.Time
}

type memoryGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	next    uint64
	holders map[string]memoryHolder
}

// NewMemoryGuard keeps holders in process. Entries expire after ttl so a lost
// release cannot block a booking forever.
func NewMemoryGuard(ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = defaultInflightTTL
	}
	return &memoryGuard{ttl: ttl, now: time.Now, holders: make(map[string]memoryHolder)}
}

func (g *memoryGuard) Acquire(_ context.Context, bookingID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if h, ok := g.holders[bookingID]; ok && now.Before(h.expires) {
		return nil, entity.ErrTransitionInFlight
	}

	g.next++
	token := g.next
	g.holders[bookingID] = memoryHolder{token: token, expires: now.Add(g.ttl)}

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if h, ok := g.holders[bookingID]; ok && h.token == token {
			delete(g.holders, bookingID)
		}
	}, nil
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisGuard struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisGuard shares holders between replicas through SET NX PX.
func NewRedisGuard(client *redis.Client, prefix string, ttl time.Duration) Guard {
	if ttl <= 0 {
		ttl = defaultInflightTTL
	}
	if prefix == "" {
		prefix = "rentdesk"
	}
	return &redisGuard{client: client, prefix: prefix + ":inflight:", ttl: ttl}
}

func (g *redisGuard) Acquire(ctx context.Context, bookingID string) (func(), error) {
	key := g.prefix + bookingID
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("in-flight guard: %w", err)
	}
	if !ok {
		return nil, entity.ErrTransitionInFlight
	}

	return func() {
		// the request context may already be gone
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err(); err != nil {
			logrus.WithField("booking_id", bookingID).Warnf("failed to release in-flight guard: %v", err)
		}
	}, nil
}
