package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	ErrStateNotFound   = errors.New("session state not found")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrVersionConflict = errors.New("session state version conflict")
)

const defaultStoreKeyPrefix = "gateway:session:"

// Store is the session persistence contract used by the gateway.
type Store interface {
	Get(ctx context.Context, sessionID string) (*SessionState, error)
	Put(ctx context.Context, st *SessionState) error
	// CompareAndSwap stores next only if the stored version still equals
	// expectedVersion (0 meaning "absent"). On success next.Version is advanced.
	CompareAndSwap(ctx context.Context, expectedVersion int64, next *SessionState) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// StoreOption customizes MemoryStore.
type StoreOption func(*MemoryStore)

func WithKeyPrefix(prefix string) StoreOption {
	return func(s *MemoryStore) {
		trimmed := strings.TrimSpace(prefix)
		if trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

// WithTTL evicts idle sessions after ttl. Zero keeps sessions for the life of
// the process, which is the default.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *MemoryStore) {
		s.ttl = ttl
	}
}

// MemoryStore keeps sessions in process memory. Nothing survives a restart.
type MemoryStore struct {
	mu        sync.Mutex
	cache     *cache.Cache
	keyPrefix string
	ttl       time.Duration
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	store := &MemoryStore{
		keyPrefix: defaultStoreKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	if store.ttl > 0 {
		store.cache = cache.New(store.ttl, store.ttl)
	} else {
		store.ttl = 0
		store.cache = cache.New(cache.NoExpiration, 0)
	}
	return store
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := s.key(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.load(key)
	if !ok {
		return nil, ErrStateNotFound
	}
	return st.Clone(), nil
}

func (s *MemoryStore) Put(ctx context.Context, st *SessionState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st == nil {
		return ErrNilSessionState
	}
	key, err := s.key(st.SessionID)
	if err != nil {
		return err
	}
	if err := st.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if prev, ok := s.load(key); ok {
		current = prev.Version
	}
	st.Version = current + 1
	s.save(key, st)
	return nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, expectedVersion int64, next *SessionState) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if next == nil {
		return false, ErrNilSessionState
	}
	key, err := s.key(next.SessionID)
	if err != nil {
		return false, err
	}
	if err := next.Validate(); err != nil {
		return false, fmt.Errorf("refusing to store invalid session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var current int64
	if prev, ok := s.load(key); ok {
		current = prev.Version
	}
	if current != expectedVersion {
		return false, nil
	}
	next.Version = expectedVersion + 1
	s.save(key, next)
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := s.key(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	return nil
}

// Len returns the number of sessions currently held.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}

func (s *MemoryStore) load(key string) (*SessionState, bool) {
	raw, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	st, ok := raw.(*SessionState)
	return st, ok && st != nil
}

func (s *MemoryStore) save(key string, st *SessionState) {
	s.cache.Set(key, st.Clone(), cache.DefaultExpiration)
}

func (s *MemoryStore) key(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.keyPrefix + sessionID, nil
}
