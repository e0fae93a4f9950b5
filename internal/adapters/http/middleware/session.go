package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultSessionTTL applies when a store is created with a zero TTL.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session is the identity behind a cookie. It carries no permission: the level
// is resolved per request from the account store.
type Session struct {
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionEventKind tells subscribers what happened to a session.
type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
	SessionExpired   SessionEventKind = "expired"
)

// SessionEvent is delivered to Subscribe callbacks.
type SessionEvent struct {
	Kind    SessionEventKind
	Session Session
}

// SessionStore keeps sessions keyed by an opaque token.
type SessionStore interface {
	Create(ctx context.Context, s Session) (string, error)
	Get(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
	// Subscribe registers fn for session changes and returns a function that
	// removes it. Callbacks run synchronously on the request goroutine.
	Subscribe(fn func(SessionEvent)) (unsubscribe func())
}

// subscribers is the listener list shared by both stores.
type subscribers struct {
	mu   sync.RWMutex
	next int
	fns  map[int]func(SessionEvent)
}

func (s *subscribers) Subscribe(fn func(SessionEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(SessionEvent))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) publish(kind SessionEventKind, sess Session) {
	s.mu.RLock()
	fns := make([]func(SessionEvent), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(SessionEvent{Kind: kind, Session: sess})
	}
}

// MemorySessionStore is a process-local session store.
type MemorySessionStore struct {
	subscribers
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionStore creates an in-memory store whose sessions live for ttl.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create stores a new session and returns the token.
// PRE: s.AccountID is non-empty
// POST: Session is stored with CreatedAt set, token is returned
func (ss *MemorySessionStore) Create(_ context.Context, s Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.CreatedAt = ss.now()
	ss.mu.Lock()
	ss.sessions[token] = s
	ss.mu.Unlock()
	ss.publish(SessionSignedIn, s)
	return token, nil
}

// Get retrieves a session by token. Expired sessions are removed.
func (ss *MemorySessionStore) Get(_ context.Context, token string) (Session, bool, error) {
	ss.mu.RLock()
	s, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false, nil
	}
	if ss.now().Sub(s.CreatedAt) > ss.ttl {
		ss.mu.Lock()
		delete(ss.sessions, token)
		ss.mu.Unlock()
		ss.publish(SessionExpired, s)
		return Session{}, false, nil
	}
	return s, true, nil
}

// Delete removes a session by token. Unknown tokens are ignored.
func (ss *MemorySessionStore) Delete(_ context.Context, token string) error {
	ss.mu.Lock()
	s, ok := ss.sessions[token]
	delete(ss.sessions, token)
	ss.mu.Unlock()
	if ok {
		ss.publish(SessionSignedOut, s)
	}
	return nil
}

// StartSweep removes expired sessions every interval until ctx is done, so
// sessions that are never read again do not pile up.
func (ss *MemorySessionStore) StartSweep(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := ss.sweep(); n > 0 {
					slog.Debug("session_event", "event", "swept", "count", n)
				}
			}
		}
	}()
}

// sweep drops every expired session and reports how many it removed.
func (ss *MemorySessionStore) sweep() int {
	now := ss.now()
	var expired []Session
	ss.mu.Lock()
	for token, s := range ss.sessions {
		if now.Sub(s.CreatedAt) > ss.ttl {
			expired = append(expired, s)
			delete(ss.sessions, token)
		}
	}
	ss.mu.Unlock()
	for _, s := range expired {
		ss.publish(SessionExpired, s)
	}
	return len(expired)
}

// RedisSessionStore shares sessions between server instances. Expiry is left
// to Redis key TTLs, so no SessionExpired events are published.
type RedisSessionStore struct {
	subscribers
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

// NewRedisSessionStore wraps an existing client.
func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl, now: time.Now}
}

// DialRedisSessionStore connects to addr and checks the connection.
func DialRedisSessionStore(ctx context.Context, addr string, ttl time.Duration) (*RedisSessionStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisSessionStore(rdb, ttl), nil
}

func sessionKey(token string) string {
	return "ksa:session:" + token
}

// Create stores a new session and returns the token.
func (rs *RedisSessionStore) Create(ctx context.Context, s Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	s.CreatedAt = rs.now()
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	if err := rs.rdb.Set(ctx, sessionKey(token), b, rs.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	rs.publish(SessionSignedIn, s)
	return token, nil
}

// Get retrieves a session by token.
func (rs *RedisSessionStore) Get(ctx context.Context, token string) (Session, bool, error) {
	b, err := rs.rdb.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		slog.Warn("session_event", "event", "corrupt", "error", err)
		return Session{}, false, nil
	}
	return s, true, nil
}

// Delete removes a session by token.
func (rs *RedisSessionStore) Delete(ctx context.Context, token string) error {
	s, ok, err := rs.Get(ctx, token)
	if err != nil {
		return err
	}
	if err := rs.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if ok {
		rs.publish(SessionSignedOut, s)
	}
	return nil
}

// Close releases the Redis connection pool.
func (rs *RedisSessionStore) Close() error {
	return rs.rdb.Close()
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
