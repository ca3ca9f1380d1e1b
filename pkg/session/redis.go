package session

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// lockStripes is the fixed number of append locks. Sessions hash onto a
// stripe; a collision only over-serializes two sessions, it never relaxes
// the single-writer guarantee for one.
const lockStripes = 64

// RedisStore implements Store on Redis for multi-node deployments. Contexts
// are stored as JSON values with a TTL; striped mutexes keep appends within
// one process single-writer per session, matching the in-memory store's
// guarantee, without growing state per session ID.
type RedisStore struct {
	client *redis.Client
	prefix string
	cap    int
	ttl    time.Duration

	locks [lockStripes]sync.Mutex
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, prefix string, cap int, ttl time.Duration) (*RedisStore, error) {
	if cap <= 0 {
		cap = 25
	}
	if prefix == "" {
		prefix = "aegis:session:"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping: %v", ErrStoreFailure, err)
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		cap:    cap,
		ttl:    ttl,
	}, nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// sessionLock maps a session ID onto its lock stripe.
func (s *RedisStore) sessionLock(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return &s.locks[h.Sum32()%lockStripes]
}

// Get fetches the session context, creating an empty one for unknown IDs.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Context, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		now := time.Now()
		return &Context{SessionID: sessionID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", ErrStoreFailure, err)
	}

	var sess Context
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: corrupt session payload: %v", ErrStoreFailure, err)
	}
	return &sess, nil
}

// Append reads, updates, and writes back the session under its lock.
func (s *RedisStore) Append(ctx context.Context, sessionID, eventID string, overallSeverity int) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	sess.RecentEvents = append(sess.RecentEvents, eventID)
	sess.SeverityTrend = append(sess.SeverityTrend, overallSeverity)
	trim(sess, s.cap)
	sess.UpdatedAt = time.Now()

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: marshal session: %v", ErrStoreFailure, err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrStoreFailure, err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
