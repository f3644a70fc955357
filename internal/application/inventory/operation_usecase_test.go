package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	prodChairs = "prd-sillas"
	locA       = "loc-a"
	locB       = "loc-b"
)

type fixture struct {
	store *memory.Store
	uc    *inventory.OperationUseCase
}

func newFixture(t *testing.T, seed int64) *fixture {
	t.Helper()
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: prodChairs, SKU: "SIL-01", Name: "Sillas", CostPrice: decimal.NewFromInt(10)})
	s.AddLocation(entity.Location{ID: locA, Name: "Bodega A", Kind: entity.LocationWarehouse})
	s.AddLocation(entity.Location{ID: locB, Name: "Bodega B", Kind: entity.LocationWarehouse})
	if seed > 0 {
		s.SetStock(prodChairs, locA, decimal.NewFromInt(seed), decimal.Zero)
	}
	uc := inventory.NewOperationUseCase(
		memory.NewTxRunner(s),
		memory.NewMoveRepository(s),
		memory.NewProductRepository(s),
		memory.NewLocationRepository(s),
		memory.NewStockRepository(s),
		ports.NopMetrics{},
	)
	return &fixture{store: s, uc: uc}
}

func (f *fixture) qty(t *testing.T, locationID string) decimal.Decimal {
	t.Helper()
	e, err := memory.NewStockRepository(f.store).Get(context.Background(), prodChairs, locationID)
	require.NoError(t, err)
	return e.Quantity
}

func lines(q int64) []inventory.LineInput {
	return []inventory.LineInput{{ProductID: prodChairs, Quantity: decimal.NewFromInt(q)}}
}

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Recepciones y ajustes
// ──────────────────────────────────────────────────────────────────────────────

func TestReceipt_CompletaSumaAlDestino(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA, Counterparty: "Acme", Lines: lines(200)})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, m.Status)
	assert.True(t, f.qty(t, locA).IsZero(), "crear un borrador no modifica el ledger")
	assert.Contains(t, m.Reference, "REC-")

	done, err := f.uc.Complete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, done.Status)
	assert.True(t, done.Lines[0].DoneQuantity.Equal(dec(200)))
	assert.NotNil(t, done.CompletedAt)
	assert.True(t, f.qty(t, locA).Equal(dec(200)))
}

func TestComplete_DosVecesAplicaUnaSola(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA, Lines: lines(10)})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, m.ID)
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.qty(t, locA).Equal(dec(10)))
}

func TestAdjustment_DeltaFirmado(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveAdjustment, ToLocationID: locA, Reason: "conteo físico",
		Lines: lines(-12),
	})
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, f.qty(t, locA).Equal(dec(38)))

	stored, err := f.uc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.Lines[0].RequestedQuantity.Equal(dec(-12)), "se guarda el delta firmado")
}

func TestAdjustment_NoPuedeDejarNegativo(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveAdjustment, ToLocationID: locA, Lines: lines(-6)})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(t, locA).Equal(dec(5)))

	stored, _ := f.uc.Get(ctx, m.ID)
	assert.Equal(t, entity.StatusDraft, stored.Status, "el estado no cambia si la completación falla")
}

// ──────────────────────────────────────────────────────────────────────────────
// Entregas y traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestDelivery_UIEnEsperaConFaltantes(t *testing.T) {
	f := newFixture(t, 15)
	ctx := context.Background()

	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveDelivery, FromLocationID: locA, Counterparty: "Cliente X", Lines: lines(100)})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "sin verificar disponibilidad no se completa")

	checked, err := f.uc.CheckAvailability(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusWaiting, checked.Status)
	require.Len(t, checked.Shortages, 1)
	assert.Equal(t, prodChairs, checked.Shortages[0].ProductID)
	assert.Equal(t, "Sillas", checked.Shortages[0].ProductName)
	assert.True(t, checked.Shortages[0].Needed.Equal(dec(100)))
	assert.True(t, checked.Shortages[0].Available.Equal(dec(15)))

	_, err = f.uc.Complete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrUnresolvedShortage)
	assert.True(t, f.qty(t, locA).Equal(dec(15)), "el ledger no cambia")
}

func TestDelivery_AgenteRechazaSinCrearBorrador(t *testing.T) {
	f := newFixture(t, 15)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveDelivery, Origin: entity.OriginAgent, FromLocationID: locA,
		Lines: lines(100), RefuseInfeasible: true,
	})
	require.Error(t, err)
	fail, ok := domain.AsFailure(err)
	require.True(t, ok)
	assert.True(t, errors.Is(fail, domain.ErrInsufficientStock))
	require.Len(t, fail.Shortages, 1)
	assert.True(t, fail.Shortages[0].Available.Equal(dec(15)))

	open, err := f.uc.List(ctx, entity.MoveFilter{Statuses: entity.OpenStatuses})
	require.NoError(t, err)
	assert.Empty(t, open, "no debe quedar ningún borrador")
}

func TestDelivery_ReprocesaWaitingCuandoLlegaStock(t *testing.T) {
	f := newFixture(t, 15)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveDelivery, FromLocationID: locA, Lines: lines(20)})
	require.NoError(t, err)
	checked, err := f.uc.CheckAvailability(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusWaiting, checked.Status)

	rec, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA, Lines: lines(10)})
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, rec.ID)
	require.NoError(t, err)

	checked, err = f.uc.CheckAvailability(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusReady, checked.Status)
	assert.Empty(t, checked.Shortages)

	_, err = f.uc.Complete(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, f.qty(t, locA).Equal(dec(5)))
}

func TestTransfer_MueveEntreUbicaciones(t *testing.T) {
	f := newFixture(t, 40)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveTransfer, Origin: entity.OriginAgent, FromLocationID: locA, ToLocationID: locB,
		Lines: lines(25), RefuseInfeasible: true,
	})
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, f.qty(t, locA).Equal(dec(15)))
	assert.True(t, f.qty(t, locB).Equal(dec(25)))
}

func TestApprove_SinStockQuedaEnDraft(t *testing.T) {
	f := newFixture(t, 40)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveDelivery, Origin: entity.OriginAgent, FromLocationID: locA,
		Lines: lines(30), RefuseInfeasible: true,
	})
	require.NoError(t, err)

	other, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveAdjustment, ToLocationID: locA, Lines: lines(-20)})
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, other.ID)
	require.NoError(t, err)

	_, err = f.uc.Approve(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	stored, _ := f.uc.Get(ctx, m.ID)
	assert.Equal(t, entity.StatusDraft, stored.Status)
	assert.False(t, stored.Approved)
	assert.True(t, f.qty(t, locA).Equal(dec(20)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock reservado
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_NoConsumeStockReservado(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveDelivery, Origin: entity.OriginAgent, FromLocationID: locA,
		Lines: lines(15), RefuseInfeasible: true,
	})
	require.NoError(t, err)
	f.store.SetStock(prodChairs, locA, dec(20), dec(10))

	_, err = f.uc.Approve(ctx, m.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	fail, ok := domain.AsFailure(err)
	require.True(t, ok)
	require.Len(t, fail.Shortages, 1)
	assert.True(t, fail.Shortages[0].Needed.Equal(dec(15)))
	assert.True(t, fail.Shortages[0].Available.Equal(dec(10)), "el faltante informa cantidad menos reservado")
	assert.Equal(t, "Sillas", fail.Shortages[0].ProductName)

	stored, _ := f.uc.Get(ctx, m.ID)
	assert.Equal(t, entity.StatusDraft, stored.Status)
	assert.False(t, stored.Approved)
	assert.True(t, f.qty(t, locA).Equal(dec(20)))
}

func TestComplete_ReadyRechazadoSiCreceLaReserva(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveTransfer, FromLocationID: locA, ToLocationID: locB, Lines: lines(15)})
	require.NoError(t, err)
	checked, err := f.uc.CheckAvailability(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusReady, checked.Status)

	f.store.SetStock(prodChairs, locA, dec(20), dec(10))
	_, err = f.uc.Complete(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.qty(t, locA).Equal(dec(20)))
	assert.True(t, f.qty(t, locB).IsZero())

	f.store.SetStock(prodChairs, locA, dec(20), dec(5))
	done, err := f.uc.Complete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, done.Status)
	assert.True(t, f.qty(t, locA).Equal(dec(5)), "el descuento puede llegar justo a lo reservado")
	assert.True(t, f.qty(t, locB).Equal(dec(15)))
}

func TestAdjustment_NoLoLimitaLaReserva(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.store.SetStock(prodChairs, locA, dec(20), dec(10))
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveAdjustment, ToLocationID: locA, Lines: lines(-15)})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, m.ID)
	require.NoError(t, err, "un conteo físico corrige la cantidad aunque haya reservas")
	assert.True(t, f.qty(t, locA).Equal(dec(5)))
}

func TestCancel(t *testing.T) {
	f := newFixture(t, 40)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveDelivery, FromLocationID: locA, Lines: lines(5)})
	require.NoError(t, err)

	c, err := f.uc.Cancel(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, c.Status)

	_, err = f.uc.Cancel(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.CheckAvailability(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.True(t, f.qty(t, locA).Equal(dec(40)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación y concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveTransfer, FromLocationID: locA, ToLocationID: locA, Lines: lines(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA, Lines: lines(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: "no-existe", Lines: lines(1)})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	_, err = f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA,
		Lines: []inventory.LineInput{{ProductID: "fantasma", Quantity: dec(1)}}})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestComplete_ConcurrenteSinPerderActualizaciones(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	in, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA, Lines: lines(30)})
	require.NoError(t, err)
	out, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveAdjustment, ToLocationID: locA, Lines: lines(-10)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{in.ID, out.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.uc.Complete(ctx, id)
		}(i, id)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.True(t, f.qty(t, locA).Equal(dec(70)), "50 + 30 - 10")
}

func TestComplete_MismaOperacionConcurrenteUnaSolaVez(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{Type: entity.MoveReceipt, ToLocationID: locA, Lines: lines(7)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.Complete(ctx, m.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, ok)
	assert.True(t, f.qty(t, locA).Equal(dec(7)))
}
