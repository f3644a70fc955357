package repository

import (
	"context"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// ConversationRepository persistencia durable del historial de conversaciones.
type ConversationRepository interface {
	Get(ctx context.Context, id string) (*entity.Conversation, error)
	Upsert(ctx context.Context, c *entity.Conversation) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error)
}
