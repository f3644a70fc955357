package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

var _ repository.ConversationRepository = (*ConversationRepo)(nil)

// ConversationRepo historial del agente; los mensajes se guardan como JSONB.
type ConversationRepo struct {
	q Querier
}

// NewConversationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewConversationRepository(q Querier) *ConversationRepo {
	return &ConversationRepo{q: q}
}

func scanConversation(row scanner) (*entity.Conversation, error) {
	var (
		c    entity.Conversation
		msgs []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Title, &msgs, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msgs, &c.Messages); err != nil {
		return nil, fmt.Errorf("unmarshal messages: %w", err)
	}
	return &c, nil
}

// Get obtiene una conversación por ID.
func (r *ConversationRepo) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	c, err := scanConversation(r.q.QueryRow(ctx, `
		SELECT id, user_id, title, messages, created_at, updated_at FROM conversations WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Upsert guarda la conversación completa.
func (r *ConversationRepo) Upsert(ctx context.Context, c *entity.Conversation) error {
	msgs, err := json.Marshal(c.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO conversations (id, user_id, title, messages, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET title = EXCLUDED.title, messages = EXCLUDED.messages, updated_at = EXCLUDED.updated_at`,
		c.ID, c.UserID, c.Title, msgs, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

// ListByUser conversaciones del usuario, la más reciente primero.
func (r *ConversationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Conversation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, title, messages, created_at, updated_at
		FROM conversations WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`, userID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
