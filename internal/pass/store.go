package pass

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultDeskTTL         = 2 * time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// Store keeps desks in memory until they sit idle for the TTL. Nothing is
// written anywhere else.
type Store struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	prefix string
	now    func() time.Time
}

func NewStore(prefix string, ttl, cleanup time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultDeskTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Store{
		cache:  gocache.New(ttl, cleanup),
		prefix: prefix,
		now:    time.Now,
	}
}

// NewToken returns a token for a fresh, empty desk.
func NewToken() string {
	return uuid.NewString()
}

// ParseToken normalizes a desk token and rejects anything that is not a UUID.
func ParseToken(token string) (string, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return "", fmt.Errorf("parse desk token: %w", err)
	}
	return id.String(), nil
}

// Desk returns the desk for token; unknown or expired tokens read as Empty.
func (s *Store) Desk(token string) Desk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(token)
}

func (s *Store) get(token string) Desk {
	if v, ok := s.cache.Get(token); ok {
		if d, ok := v.(Desk); ok {
			return d
		}
	}
	return Desk{}
}

// Submit holds p as the pending pass of token.
func (s *Store) Submit(token string, p Pass) Desk {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.get(token).Submit(p)
	s.cache.SetDefault(token, d)
	return d
}

// Confirm promotes the pending pass of token. promoted is false when the
// desk was already confirmed. The desk is unchanged on error.
func (s *Store) Confirm(token string) (d Desk, promoted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.get(token)
	d, err = prev.Confirm(s.now())
	if err != nil {
		return d, false, err
	}
	s.cache.SetDefault(token, d)
	return d, prev.State == StatePending, nil
}

func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
