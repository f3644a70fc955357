package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCanComplete(t *testing.T) {
	cases := []struct {
		name   string
		move   entity.Move
		target error
	}{
		{"ready", entity.Move{Type: entity.MoveDelivery, Status: entity.StatusReady}, nil},
		{"receipt draft", entity.Move{Type: entity.MoveReceipt, Status: entity.StatusDraft}, nil},
		{"adjustment draft", entity.Move{Type: entity.MoveAdjustment, Status: entity.StatusDraft}, nil},
		{"agent delivery aprobada", entity.Move{Type: entity.MoveDelivery, Status: entity.StatusDraft, Origin: entity.OriginAgent, Approved: true}, nil},
		{"ui delivery sin verificar", entity.Move{Type: entity.MoveDelivery, Status: entity.StatusDraft, Origin: entity.OriginUI}, domain.ErrInvalidTransition},
		{"waiting", entity.Move{Type: entity.MoveTransfer, Status: entity.StatusWaiting}, domain.ErrUnresolvedShortage},
		{"done", entity.Move{Type: entity.MoveReceipt, Status: entity.StatusDone}, domain.ErrInvalidTransition},
		{"cancelled", entity.Move{Type: entity.MoveReceipt, Status: entity.StatusCancelled}, domain.ErrInvalidTransition},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := inventory.CanComplete(&tc.move)
			if tc.target == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.target), "se esperaba %v, se obtuvo %v", tc.target, err)
		})
	}
}

func TestCanCancel_TerminalesRechazados(t *testing.T) {
	for _, st := range []entity.MoveStatus{entity.StatusDone, entity.StatusCancelled} {
		err := inventory.CanCancel(&entity.Move{Status: st})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	}
	for _, st := range entity.OpenStatuses {
		assert.NoError(t, inventory.CanCancel(&entity.Move{Status: st}))
	}
}

func TestCanApprove_SoloBorradoresDelAgente(t *testing.T) {
	assert.NoError(t, inventory.CanApprove(&entity.Move{Origin: entity.OriginAgent, Status: entity.StatusDraft}))
	assert.ErrorIs(t, inventory.CanApprove(&entity.Move{Origin: entity.OriginUI, Status: entity.StatusDraft}), domain.ErrInvalidTransition)
	assert.ErrorIs(t, inventory.CanApprove(&entity.Move{Origin: entity.OriginAgent, Status: entity.StatusDone}), domain.ErrInvalidTransition)
}

func TestValidateEndpoints(t *testing.T) {
	assert.NoError(t, inventory.ValidateEndpoints(entity.MoveReceipt, "", "B"))
	assert.NoError(t, inventory.ValidateEndpoints(entity.MoveDelivery, "A", ""))
	assert.NoError(t, inventory.ValidateEndpoints(entity.MoveTransfer, "A", "B"))
	assert.NoError(t, inventory.ValidateEndpoints(entity.MoveAdjustment, "", "B"))

	assert.ErrorIs(t, inventory.ValidateEndpoints(entity.MoveTransfer, "A", "A"), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateEndpoints(entity.MoveReceipt, "", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateEndpoints(entity.MoveDelivery, "", "B"), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateEndpoints("SCRAP", "A", ""), domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Deltas
// ──────────────────────────────────────────────────────────────────────────────

func TestComputeDeltas_Transfer(t *testing.T) {
	m := &entity.Move{
		Type: entity.MoveTransfer, FromLocationID: "loc-a", ToLocationID: "loc-b",
		Lines: []entity.MoveLine{
			{ProductID: "p1", RequestedQuantity: decimal.NewFromInt(5)},
			{ProductID: "p1", RequestedQuantity: decimal.NewFromInt(3)},
		},
	}
	deltas, err := inventory.ComputeDeltas(m)
	require.NoError(t, err)
	require.Len(t, deltas, 2, "las líneas del mismo producto se agregan")
	assert.Equal(t, "loc-a", deltas[0].LocationID)
	assert.True(t, deltas[0].Delta.Equal(decimal.NewFromInt(-8)))
	assert.True(t, deltas[0].KeepReserved, "el origen no puede consumir lo reservado")
	assert.Equal(t, "loc-b", deltas[1].LocationID)
	assert.True(t, deltas[1].Delta.Equal(decimal.NewFromInt(8)))
	assert.False(t, deltas[1].KeepReserved)
}

func TestComputeDeltas_AdjustmentFirmado(t *testing.T) {
	m := &entity.Move{
		Type: entity.MoveAdjustment, ToLocationID: "loc-a",
		Lines: []entity.MoveLine{{ProductID: "p1", RequestedQuantity: decimal.NewFromInt(-12)}},
	}
	deltas, err := inventory.ComputeDeltas(m)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.True(t, deltas[0].Delta.Equal(decimal.NewFromInt(-12)))
	assert.False(t, deltas[0].KeepReserved)
}

func TestValidateLines(t *testing.T) {
	pos := []entity.MoveLine{{ProductID: "p", RequestedQuantity: decimal.NewFromInt(1)}}
	neg := []entity.MoveLine{{ProductID: "p", RequestedQuantity: decimal.NewFromInt(-1)}}
	zero := []entity.MoveLine{{ProductID: "p", RequestedQuantity: decimal.Zero}}

	assert.NoError(t, inventory.ValidateLines(entity.MoveReceipt, pos))
	assert.ErrorIs(t, inventory.ValidateLines(entity.MoveReceipt, neg), domain.ErrInvalidInput)
	assert.NoError(t, inventory.ValidateLines(entity.MoveAdjustment, neg))
	assert.ErrorIs(t, inventory.ValidateLines(entity.MoveAdjustment, zero), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateLines(entity.MoveDelivery, nil), domain.ErrInvalidInput)
}

func TestShortages(t *testing.T) {
	m := &entity.Move{
		Type: entity.MoveDelivery, FromLocationID: "loc-a",
		Lines: []entity.MoveLine{{ProductID: "p1", RequestedQuantity: decimal.NewFromInt(100)}},
	}
	shortages, err := inventory.Shortages(m, func(string) (decimal.Decimal, error) {
		return decimal.NewFromInt(15), nil
	})
	require.NoError(t, err)
	require.Len(t, shortages, 1)
	assert.True(t, shortages[0].Needed.Equal(decimal.NewFromInt(100)))
	assert.True(t, shortages[0].Available.Equal(decimal.NewFromInt(15)))
}

func TestLowStock_OrdenPorDeficit(t *testing.T) {
	products := map[string]entity.Product{
		"p1": {ID: "p1", Name: "Tornillos", ReorderLevel: decimal.NewFromInt(50)},
		"p2": {ID: "p2", Name: "Tuercas", ReorderLevel: decimal.NewFromInt(100)},
		"p3": {ID: "p3", Name: "Arandelas", ReorderLevel: decimal.NewFromInt(10)},
	}
	entries := []entity.StockEntry{
		{ProductID: "p1", LocationID: "l", Quantity: decimal.NewFromInt(40)},
		{ProductID: "p2", LocationID: "l", Quantity: decimal.NewFromInt(20)},
		{ProductID: "p3", LocationID: "l", Quantity: decimal.NewFromInt(10)},
	}
	items := inventory.LowStock(entries, products, map[string]entity.Location{"l": {ID: "l", Name: "Central"}})
	require.Len(t, items, 2, "la cantidad igual al nivel de reorden no es stock bajo")
	assert.Equal(t, "p2", items[0].ProductID)
	assert.Equal(t, "Central", items[0].LocationName)
	assert.True(t, items[0].Deficit.Equal(decimal.NewFromInt(80)))
}
