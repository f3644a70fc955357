package analytics_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/analytics"
	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

func TestGetKPIs_CatalogoSemilla(t *testing.T) {
	ctx := context.Background()
	s := memory.NewSeeded()
	ops := inventory.NewOperationUseCase(memory.NewTxRunner(s), memory.NewMoveRepository(s),
		memory.NewProductRepository(s), memory.NewLocationRepository(s), memory.NewStockRepository(s), nil)
	uc := analytics.NewDashboardUseCase(memory.NewStockRepository(s), memory.NewMoveRepository(s))

	kpis, err := uc.GetKPIs(ctx)
	require.NoError(t, err)
	assert.True(t, kpis.TotalValue.Equal(decimal.NewFromInt(4002156)), kpis.TotalValue.String())
	assert.Equal(t, 6, kpis.LowStockCount)
	assert.Len(t, kpis.TopLowStock, 5, "el widget muestra como máximo 5")
	assert.Equal(t, "TOR-M8", kpis.TopLowStock[0].SKU, "mayor déficit primero")
	assert.Zero(t, kpis.OpenOperations)
	assert.NotEmpty(t, kpis.DateLabel)

	central, err := memory.NewLocationRepository(s).FindByName(ctx, "Bodega Central")
	require.NoError(t, err)
	chairs, err := memory.NewProductRepository(s).GetBySKU(ctx, "SIL-OF")
	require.NoError(t, err)

	done, err := ops.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveReceipt, ToLocationID: central.ID,
		Lines: []inventory.LineInput{{ProductID: chairs.ID, Quantity: decimal.NewFromInt(2)}},
	})
	require.NoError(t, err)
	_, err = ops.Complete(ctx, done.ID)
	require.NoError(t, err)
	_, err = ops.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveDelivery, FromLocationID: central.ID,
		Lines: []inventory.LineInput{{ProductID: chairs.ID, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)

	kpis, err = uc.GetKPIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, kpis.OpenOperations)
	assert.Equal(t, 1, kpis.CompletedToday)
	assert.Equal(t, 1, kpis.CompletedInMonth)
	assert.True(t, kpis.TotalValue.Equal(decimal.NewFromInt(4092156)), "+2 sillas × 45000")
}
