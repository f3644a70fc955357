package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

var _ ports.SessionStore = (*SessionStore)(nil)

type sessionItem struct {
	conv     *entity.Conversation
	expires  time.Time
	lastUsed time.Time
}

// SessionStore caché de conversaciones del proceso con TTL y tope de entradas (se expulsa la menos usada).
type SessionStore struct {
	mu         sync.Mutex
	items      map[string]*sessionItem
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewSessionStore construye la caché. maxEntries <= 0 = sin tope.
func NewSessionStore(ttl time.Duration, maxEntries int) *SessionStore {
	return &SessionStore{
		items:      map[string]*sessionItem{},
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (*entity.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	now := s.now()
	if s.ttl > 0 && now.After(it.expires) {
		delete(s.items, id)
		return nil, nil
	}
	it.lastUsed = now
	return cloneConversation(it.conv), nil
}

func (s *SessionStore) Put(_ context.Context, c *entity.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.items[c.ID] = &sessionItem{conv: cloneConversation(c), expires: now.Add(s.ttl), lastUsed: now}
	s.evictLocked(now)
	return nil
}

func (s *SessionStore) Evict(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

// Len número de conversaciones en caché.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *SessionStore) evictLocked(now time.Time) {
	if s.ttl > 0 {
		for id, it := range s.items {
			if now.After(it.expires) {
				delete(s.items, id)
			}
		}
	}
	for s.maxEntries > 0 && len(s.items) > s.maxEntries {
		var oldestID string
		var oldest time.Time
		for id, it := range s.items {
			if oldestID == "" || it.lastUsed.Before(oldest) {
				oldestID, oldest = id, it.lastUsed
			}
		}
		delete(s.items, oldestID)
	}
}
