package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo historial durable en memoria.
type ConversationRepo struct{ s *Store }

// NewConversationRepository construye el repositorio sobre el store.
func NewConversationRepository(s *Store) *ConversationRepo { return &ConversationRepo{s: s} }

func (r *ConversationRepo) Get(_ context.Context, id string) (*entity.Conversation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.conversations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConversation(c), nil
}

func (r *ConversationRepo) Upsert(_ context.Context, c *entity.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.conversations[c.ID] = cloneConversation(c)
	return nil
}

func (r *ConversationRepo) ListByUser(_ context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	r.s.mu.RLock()
	var out []*entity.Conversation
	for _, c := range r.s.conversations {
		if c.UserID == userID {
			out = append(out, cloneConversation(c))
		}
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, limit, 0), nil
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	cp := *c
	cp.Messages = append([]entity.Message(nil), c.Messages...)
	return &cp
}
