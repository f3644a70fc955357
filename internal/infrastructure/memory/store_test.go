package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

func newStore() *memory.Store {
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "p1", SKU: "TOR-M8", Name: "Tornillo M8", CostPrice: decimal.NewFromInt(2), ReorderLevel: decimal.NewFromInt(100)})
	s.AddProduct(entity.Product{ID: "p2", SKU: "SIL-OF", Name: "Silla de oficina", CostPrice: decimal.NewFromInt(50)})
	s.AddLocation(entity.Location{ID: "l1", Name: "Bodega Central", Kind: entity.LocationWarehouse})
	s.AddLocation(entity.Location{ID: "l2", Name: "Tienda Norte", Kind: entity.LocationStore})
	s.SetStock("p1", "l1", decimal.NewFromInt(50), decimal.Zero)
	return s
}

func qty(t *testing.T, s *memory.Store, productID, locationID string) decimal.Decimal {
	t.Helper()
	e, err := memory.NewStockRepository(s).Get(context.Background(), productID, locationID)
	require.NoError(t, err)
	return e.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyDeltas_StrictRechazaNegativoSinAplicarNada(t *testing.T) {
	s := newStore()
	tx := memory.NewTxRunner(s)

	err := tx.Run(context.Background(), func(_ repository.MoveRepository, ledger repository.LedgerWriter) error {
		_, err := ledger.ApplyDeltas(context.Background(), []entity.LedgerDelta{
			{ProductID: "p1", LocationID: "l2", Delta: decimal.NewFromInt(10)},
			{ProductID: "p1", LocationID: "l1", Delta: decimal.NewFromInt(-80)},
		}, true)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	f, ok := domain.AsFailure(err)
	require.True(t, ok)
	require.Len(t, f.Shortages, 1)
	assert.True(t, f.Shortages[0].Needed.Equal(decimal.NewFromInt(80)))
	assert.True(t, f.Shortages[0].Available.Equal(decimal.NewFromInt(50)))

	assert.True(t, qty(t, s, "p1", "l1").Equal(decimal.NewFromInt(50)), "el ledger no debe cambiar")
	assert.True(t, qty(t, s, "p1", "l2").IsZero(), "todo o nada: el delta positivo tampoco se aplica")
}

func TestApplyDeltas_KeepReservedDescuentaSoloLoDisponible(t *testing.T) {
	s := newStore()
	s.SetStock("p1", "l1", decimal.NewFromInt(50), decimal.NewFromInt(30))
	apply := func(delta int64, keep bool) error {
		return memory.NewTxRunner(s).Run(context.Background(), func(_ repository.MoveRepository, ledger repository.LedgerWriter) error {
			_, err := ledger.ApplyDeltas(context.Background(), []entity.LedgerDelta{
				{ProductID: "p1", LocationID: "l1", Delta: decimal.NewFromInt(delta), KeepReserved: keep},
			}, true)
			return err
		})
	}

	err := apply(-25, true)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	f, ok := domain.AsFailure(err)
	require.True(t, ok)
	require.Len(t, f.Shortages, 1)
	assert.True(t, f.Shortages[0].Available.Equal(decimal.NewFromInt(20)))
	assert.True(t, qty(t, s, "p1", "l1").Equal(decimal.NewFromInt(50)))

	require.NoError(t, apply(-25, false), "sin la marca solo se exige no quedar negativo")
	assert.True(t, qty(t, s, "p1", "l1").Equal(decimal.NewFromInt(25)))
}

func TestApplyDeltas_NoStrictRecortaACero(t *testing.T) {
	s := newStore()
	err := memory.NewTxRunner(s).Run(context.Background(), func(_ repository.MoveRepository, ledger repository.LedgerWriter) error {
		entries, err := ledger.ApplyDeltas(context.Background(), []entity.LedgerDelta{
			{ProductID: "p1", LocationID: "l1", Delta: decimal.NewFromInt(-80)},
			{ProductID: "p2", LocationID: "l2", Delta: decimal.NewFromInt(-5)},
		}, false)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, qty(t, s, "p1", "l1").IsZero())
	assert.True(t, qty(t, s, "p2", "l2").IsZero(), "entrada ausente se crea con max(0, delta)")
}

func TestTxRunner_ErrorDescartaEscrituras(t *testing.T) {
	s := newStore()
	boom := errors.New("boom")
	err := memory.NewTxRunner(s).Run(context.Background(), func(moves repository.MoveRepository, ledger repository.LedgerWriter) error {
		_, err := ledger.ApplyDeltas(context.Background(), []entity.LedgerDelta{
			{ProductID: "p1", LocationID: "l1", Delta: decimal.NewFromInt(5)},
		}, true)
		require.NoError(t, err)
		got, _ := ledger.Get(context.Background(), "p1", "l1")
		assert.True(t, got.Quantity.Equal(decimal.NewFromInt(55)), "la tx ve sus propias escrituras")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, qty(t, s, "p1", "l1").Equal(decimal.NewFromInt(50)))
}

func TestStockRepo_LowStockYValor(t *testing.T) {
	s := newStore()
	s.SetStock("p2", "l2", decimal.NewFromInt(3), decimal.Zero)
	repo := memory.NewStockRepository(s)

	low, err := repo.ListLowStock(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, low, 1, "p2 no tiene nivel de reorden")
	assert.Equal(t, "Tornillo M8", low[0].ProductName)
	assert.Equal(t, "Bodega Central", low[0].LocationName)

	total, err := repo.TotalValue(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(250)), "50×2 + 3×50")

	central, err := repo.TotalValue(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, central.Equal(decimal.NewFromInt(100)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Similitud
// ──────────────────────────────────────────────────────────────────────────────

func TestSimilaritySearcher_OrdenaPorPuntaje(t *testing.T) {
	s := newStore()
	ss := memory.NewSimilaritySearcher(s)

	matches, err := ss.Search(context.Background(), ports.SimilarityProducts, "cuantos tornillos hay", 5)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "p1", matches[0].ID)

	locs, err := ss.Search(context.Background(), ports.SimilarityLocations, "tienda", 3)
	require.NoError(t, err)
	require.NotEmpty(t, locs)
	assert.Equal(t, "l2", locs[0].ID)
	assert.InDelta(t, 1.0, locs[0].Similarity, 0.0001)
}

func TestSimilaritySearcher_TextoVacio(t *testing.T) {
	matches, err := memory.NewSimilaritySearcher(newStore()).Search(context.Background(), ports.SimilarityProducts, "  ", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
