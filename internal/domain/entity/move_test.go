package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

func TestMove_MarkDone(t *testing.T) {
	m := &entity.Move{
		Status:    entity.StatusReady,
		Shortages: []entity.Shortage{{ProductID: "p"}},
		Lines:     []entity.MoveLine{{ProductID: "p", RequestedQuantity: decimal.NewFromInt(200)}},
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.MarkDone(now)

	assert.Equal(t, entity.StatusDone, m.Status)
	assert.True(t, m.Lines[0].DoneQuantity.Equal(decimal.NewFromInt(200)))
	assert.Nil(t, m.Shortages)
	assert.Equal(t, now, *m.CompletedAt)
}

func TestMove_CloneIndependiente(t *testing.T) {
	m := &entity.Move{Lines: []entity.MoveLine{{ProductID: "p"}}}
	c := m.Clone()
	c.Lines[0].ProductID = "otro"
	assert.Equal(t, "p", m.Lines[0].ProductID, "el clon no debe compartir líneas")
}

func TestStockEntry_Available(t *testing.T) {
	e := entity.StockEntry{Quantity: decimal.NewFromInt(10), Reserved: decimal.NewFromInt(4)}
	assert.True(t, e.Available().Equal(decimal.NewFromInt(6)))

	e.Reserved = decimal.NewFromInt(12)
	assert.True(t, e.Available().IsZero(), "disponible nunca es negativo")
}

func TestConversation_WindowEmpiezaPorUsuario(t *testing.T) {
	c := &entity.Conversation{}
	now := time.Now()
	c.Append(now,
		entity.Message{Role: entity.RoleUser, Content: "hola"},
		entity.Message{Role: entity.RoleAssistant, Content: "¿en qué te ayudo?"},
		entity.Message{Role: entity.RoleUser, Content: "stock de tornillos"},
		entity.Message{Role: entity.RoleAssistant, Content: "hay 40"},
	)
	w := c.Window(3)
	assert.Len(t, w, 2)
	assert.Equal(t, entity.RoleUser, w[0].Role)
	assert.Equal(t, "hola", c.Title)
}
