package tools_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

type fixture struct {
	store *memory.Store
	ops   *inventory.OperationUseCase
	d     *tools.Dispatcher
}

func newFixture() fixture {
	s := memory.NewSeeded()
	products := memory.NewProductRepository(s)
	locations := memory.NewLocationRepository(s)
	stock := memory.NewStockRepository(s)
	ops := inventory.NewOperationUseCase(memory.NewTxRunner(s), memory.NewMoveRepository(s), products, locations, stock, nil)
	d := tools.NewDispatcher(ops, products, locations, stock, memory.NewSimilaritySearcher(s), 0.3, nil, nil)
	return fixture{store: s, ops: ops, d: d}
}

func (f fixture) call(t *testing.T, name string, args any) tools.Result {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return f.d.Dispatch(context.Background(), "user-1", name, raw)
}

func (f fixture) open(t *testing.T) []*entity.Move {
	t.Helper()
	moves, err := f.ops.List(context.Background(), entity.MoveFilter{Statuses: entity.OpenStatuses})
	require.NoError(t, err)
	return moves
}

func (f fixture) available(t *testing.T, sku, location string) decimal.Decimal {
	t.Helper()
	ctx := context.Background()
	p, err := memory.NewProductRepository(f.store).GetBySKU(ctx, sku)
	require.NoError(t, err)
	l, err := memory.NewLocationRepository(f.store).FindByName(ctx, location)
	require.NoError(t, err)
	q, err := f.ops.Available(ctx, p.ID, l.ID)
	require.NoError(t, err)
	return q
}

// ──────────────────────────────────────────────────────────────────────────────
// Decodificación
// ──────────────────────────────────────────────────────────────────────────────

func TestDecode_CamposDesconocidosSonEntradaInvalida(t *testing.T) {
	_, err := tools.Decode(tools.ToolGetStock, json.RawMessage(`{"product_name":"Tornillo M8","color":"rojo"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestDecode_ValidaCamposObligatorios(t *testing.T) {
	_, err := tools.Decode(tools.ToolCreateReceipt, json.RawMessage(`{"destination":"Bodega Central","lines":[]}`))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "una recepción sin líneas es inválida")

	_, err = tools.Decode(tools.ToolCreateDelivery, json.RawMessage(`{"source":"Bodega Central","lines":[{"product_name":"Silla de oficina","quantity":0}]}`))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "cantidad cero es inválida")

	req, err := tools.Decode(tools.ToolGetLowStock, nil)
	require.NoError(t, err, "argumentos vacíos equivalen a {}")
	assert.Equal(t, tools.ToolGetLowStock, req.Tool())
}

func TestMutating_SoloHerramientasDeBorrador(t *testing.T) {
	for _, name := range []string{tools.ToolCreateReceipt, tools.ToolCreateDelivery, tools.ToolCreateTransfer, tools.ToolCreateAdjustment} {
		assert.True(t, tools.Mutating(name), name)
	}
	for _, name := range []string{tools.ToolGetStock, tools.ToolGetLowStock, tools.ToolGetOperation, "desconocida"} {
		assert.False(t, tools.Mutating(name), name)
	}
}

func TestDispatch_HerramientaDesconocida(t *testing.T) {
	f := newFixture()
	res := f.d.Dispatch(context.Background(), "user-1", "drop_tables", json.RawMessage(`{}`))
	require.NotNil(t, res.Failure)
	assert.True(t, errors.Is(res.Failure, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura
// ──────────────────────────────────────────────────────────────────────────────

func TestGetStock_PorNombreAproximado(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolGetStock, map[string]any{"product_name": "sillas"})

	require.True(t, res.OK(), res.Text())
	report, ok := res.Output.(tools.StockReport)
	require.True(t, ok)
	assert.Equal(t, "SIL-OF", report.SKU)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(19)), "15 en bodega + 4 en tienda")
	assert.Contains(t, res.Text(), "Bodega Central: 15")
}

func TestGetStock_ProductoInexistente(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolGetStock, map[string]any{"product_name": "unicornio dorado"})

	require.NotNil(t, res.Failure)
	assert.True(t, errors.Is(res.Failure, domain.ErrEntityNotFound))
	assert.Equal(t, "unicornio dorado", res.Failure.Subject)
}

func TestGetLowStock_OrdenadoPorDeficit(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolGetLowStock, map[string]any{})

	require.True(t, res.OK())
	report := res.Output.(tools.LowStockReport)
	require.Len(t, report.Items, 6)
	for i := 1; i < len(report.Items); i++ {
		assert.False(t, report.Items[i].Deficit.GreaterThan(report.Items[i-1].Deficit), "déficit descendente")
	}
	assert.Equal(t, "TOR-M8", report.Items[0].SKU)
}

func TestGetStockValue_PorUbicacion(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolGetStockValue, map[string]any{"location_name": "Tienda Norte"})

	require.True(t, res.OK())
	report := res.Output.(tools.StockValueReport)
	// 4 sillas × 45000 + 12 rollos × 3500
	assert.True(t, report.Value.Equal(decimal.NewFromInt(222000)), report.Value.String())
	assert.Contains(t, res.Text(), "Tienda Norte")
}

// ──────────────────────────────────────────────────────────────────────────────
// Escritura (borradores)
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDelivery_SinStockRechazaSinBorrador(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolCreateDelivery, map[string]any{
		"source":   "Bodega Central",
		"customer": "Oficinas ACME",
		"lines":    []map[string]any{{"product_name": "Silla de oficina", "quantity": 100}},
	})

	require.NotNil(t, res.Failure)
	assert.True(t, errors.Is(res.Failure, domain.ErrInsufficientStock))
	require.Len(t, res.Failure.Shortages, 1)
	assert.True(t, res.Failure.Shortages[0].Needed.Equal(decimal.NewFromInt(100)))
	assert.True(t, res.Failure.Shortages[0].Available.Equal(decimal.NewFromInt(15)))
	assert.Nil(t, res.Draft)
	assert.Empty(t, f.open(t), "no debe quedar ningún borrador")
	assert.True(t, f.available(t, "SIL-OF", "Bodega Central").Equal(decimal.NewFromInt(15)))
}

func TestCreateReceipt_CreaBorradorDeAgenteSinTocarLedger(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolCreateReceipt, map[string]any{
		"destination": "bodega central",
		"supplier":    "Muebles del Valle",
		"lines":       []map[string]any{{"product_name": "SIL-OF", "quantity": 20}},
	})

	require.True(t, res.OK(), res.Text())
	require.NotNil(t, res.Draft)
	assert.Equal(t, entity.StatusDraft, res.Draft.Status)
	assert.Equal(t, entity.OriginAgent, res.Draft.Origin)
	assert.Equal(t, "user-1", res.Draft.CreatedBy)
	assert.Contains(t, res.Text(), res.Draft.Reference)
	assert.Contains(t, res.Text(), "confirmación")
	assert.True(t, f.available(t, "SIL-OF", "Bodega Central").Equal(decimal.NewFromInt(15)), "el ledger no cambia")
}

func TestCreateAdjustment_DeltaEsNuevoMenosActual(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolCreateAdjustment, map[string]any{
		"product_name":  "Silla de oficina",
		"location_name": "Bodega Central",
		"new_quantity":  10,
		"reason":        "conteo físico",
	})

	require.True(t, res.OK(), res.Text())
	require.Len(t, res.Draft.Lines, 1)
	assert.True(t, res.Draft.Lines[0].RequestedQuantity.Equal(decimal.NewFromInt(-5)))

	done, err := f.ops.Approve(context.Background(), res.Draft.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDone, done.Status)
	assert.True(t, f.available(t, "SIL-OF", "Bodega Central").Equal(decimal.NewFromInt(10)))
}

func TestCreateAdjustment_SinCambioEsEntradaInvalida(t *testing.T) {
	f := newFixture()
	res := f.call(t, tools.ToolCreateAdjustment, map[string]any{
		"product_name":  "Silla de oficina",
		"location_name": "Bodega Central",
		"new_quantity":  15,
		"reason":        "conteo físico",
	})

	require.NotNil(t, res.Failure)
	assert.True(t, errors.Is(res.Failure, domain.ErrInvalidInput))
}

func TestGetOperation_PorReferenciaYPendientes(t *testing.T) {
	f := newFixture()
	created := f.call(t, tools.ToolCreateTransfer, map[string]any{
		"source":      "Bodega Central",
		"destination": "Tienda Norte",
		"lines":       []map[string]any{{"product_name": "Mesa plegable", "quantity": 5}},
	})
	require.True(t, created.OK(), created.Text())

	res := f.call(t, tools.ToolGetOperation, map[string]any{"reference": created.Draft.Reference})
	require.True(t, res.OK(), res.Text())
	view := res.Output.(tools.OperationView)
	assert.Equal(t, created.Draft.ID, view.ID)
	assert.Equal(t, "Bodega Central", view.From)
	assert.Equal(t, "Tienda Norte", view.To)

	pending := f.call(t, tools.ToolGetPendingOperations, map[string]any{"type": "transfer"})
	require.True(t, pending.OK())
	assert.Len(t, pending.Output.(tools.OperationList).Operations, 1)

	missing := f.call(t, tools.ToolGetOperation, map[string]any{"reference": "REC-000000-XXXXXX"})
	assert.True(t, errors.Is(missing.Failure, domain.ErrEntityNotFound))
}

func TestSpecs_CatalogoCompleto(t *testing.T) {
	f := newFixture()
	specs := f.d.Specs()
	require.Len(t, specs, 11)

	seen := map[string]bool{}
	for _, s := range specs {
		assert.False(t, seen[s.Name], "nombre duplicado %s", s.Name)
		seen[s.Name] = true
		assert.NotEmpty(t, s.Description)
		assert.Equal(t, "object", s.Parameters["type"])
		_, err := tools.Decode(s.Name, json.RawMessage(`{"unknown_field":1}`))
		assert.Error(t, err, s.Name)
	}
}
