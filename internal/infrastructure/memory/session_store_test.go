package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

func TestSessionStore_ExpiraPorTTL(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessionStore(time.Minute, 0)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(context.Background(), &entity.Conversation{ID: "c1", UserID: "u"}))
	got, err := s.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = s.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, got, "la conversación expirada no debe devolverse")
}

func TestSessionStore_ExpulsaLaMenosUsada(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessionStore(time.Hour, 2)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, &entity.Conversation{ID: "a"}))
	now = now.Add(time.Second)
	require.NoError(t, s.Put(ctx, &entity.Conversation{ID: "b"}))
	now = now.Add(time.Second)
	_, _ = s.Get(ctx, "a")
	now = now.Add(time.Second)
	require.NoError(t, s.Put(ctx, &entity.Conversation{ID: "c"}))

	assert.Equal(t, 2, s.Len())
	b, _ := s.Get(ctx, "b")
	assert.Nil(t, b, "b es la menos usada")
	a, _ := s.Get(ctx, "a")
	assert.NotNil(t, a)
}

func TestSessionStore_Evict(t *testing.T) {
	s := NewSessionStore(time.Hour, 0)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, &entity.Conversation{ID: "a"}))
	require.NoError(t, s.Evict(ctx, "a"))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
