// Package redis implementa la caché compartida de conversaciones sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/pkg/config"
)

var _ ports.SessionStore = (*SessionStore)(nil)

const keyPrefix = "oracle:conversation:"

// SessionStore conversaciones activas serializadas en JSON, con expiración por TTL.
type SessionStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewClient abre el cliente y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewSessionStore construye la caché sobre un cliente ya abierto.
func NewSessionStore(client *goredis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Key clave de una conversación.
func Key(conversationID string) string {
	return keyPrefix + conversationID
}

// Get devuelve (nil, nil) si la conversación no está o expiró.
func (s *SessionStore) Get(ctx context.Context, conversationID string) (*entity.Conversation, error) {
	val, err := s.client.Get(ctx, Key(conversationID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var c entity.Conversation
	if err := json.Unmarshal(val, &c); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &c, nil
}

// Put guarda la conversación y renueva el TTL.
func (s *SessionStore) Put(ctx context.Context, c *entity.Conversation) error {
	if c == nil {
		return nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, Key(c.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Evict elimina la conversación de la caché.
func (s *SessionStore) Evict(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, Key(conversationID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
