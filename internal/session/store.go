// Package session implements the server-side session store keyed by the
// opaque cookie id. The only field a session carries is the numeric userId.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "oms_session"

const keyPrefix = "oms:session:"

// Store maps opaque session ids to user ids.
type Store interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, sessionID string) (int64, bool, error)
	// Touch extends the session TTL (sliding expiry).
	Touch(ctx context.Context, sessionID string) error
	Destroy(ctx context.Context, sessionID string) error
}

// RedisStore keeps sessions in Redis with a TTL so restarts and horizontal
// scaling do not drop logins.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, keyPrefix+id, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (int64, bool, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Corrupt value — treat as no session rather than failing the request.
		return 0, false, nil
	}
	return userID, true, nil
}

func (s *RedisStore) Touch(ctx context.Context, sessionID string) error {
	return s.rdb.Expire(ctx, keyPrefix+sessionID, s.ttl).Err()
}

func (s *RedisStore) Destroy(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, keyPrefix+sessionID).Err()
}

// MemoryStore is the in-process Store used by tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memEntry
	ttl      time.Duration
}

type memEntry struct {
	userID    int64
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memEntry), ttl: ttl}
}

func (s *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.sessions[id] = memEntry{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok || time.Now().After(e.expiresAt) {
		delete(s.sessions, sessionID)
		return 0, false, nil
	}
	return e.userID, true, nil
}

func (s *MemoryStore) Touch(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sessionID]; ok {
		e.expiresAt = time.Now().Add(s.ttl)
		s.sessions[sessionID] = e
	}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
