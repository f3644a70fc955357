package ports

import (
	"context"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// SessionStore caché de conversaciones activas con expiración.
// Get devuelve (nil, nil) si la conversación no está en caché.
type SessionStore interface {
	Get(ctx context.Context, conversationID string) (*entity.Conversation, error)
	Put(ctx context.Context, c *entity.Conversation) error
	Evict(ctx context.Context, conversationID string) error
}
