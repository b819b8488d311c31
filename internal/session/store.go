package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession means the session id resolved to nothing: never issued,
// expired, or revoked.
var ErrNoSession = errors.New("session not found")

// Store maps an opaque session id to the authenticated username. The
// username is the only session state that exists.
type Store interface {
	Save(ctx context.Context, sid, username string, ttl time.Duration) error
	Load(ctx context.Context, sid string) (string, error)
	Delete(ctx context.Context, sid string) error
}

func sessionKey(sid string) string {
	return "auth:session:" + sid
}

// RedisStore keeps sessions in Redis so login state survives restarts and
// is shared across instances.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, sid, username string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(sid), username, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, sid string) (string, error) {
	username, err := s.rdb.Get(ctx, sessionKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	return username, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid)).Err()
}

// MemoryStore is an in-process store for tests and single-node development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	username  string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) Save(_ context.Context, sid, username string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.sessions[sid] = memorySession{username: username, expiresAt: exp}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sid string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sid]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNoSession
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		return "", ErrNoSession
	}
	return sess.username, nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
