package agent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/agent"
	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/application/tools"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

func newRouter(t *testing.T) *agent.FallbackRouter {
	t.Helper()
	s := memory.NewSeeded()
	products := memory.NewProductRepository(s)
	locations := memory.NewLocationRepository(s)
	stock := memory.NewStockRepository(s)
	ops := inventory.NewOperationUseCase(memory.NewTxRunner(s), memory.NewMoveRepository(s), products, locations, stock, nil)
	d := tools.NewDispatcher(ops, products, locations, stock, memory.NewSimilaritySearcher(s), 0.3, nil, nil)
	r, err := agent.NewFallbackRouter(d, nil)
	require.NoError(t, err)
	return r
}

// ──────────────────────────────────────────────────────────────────────────────
// Clasificación
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_PrioridadYNormalizacion(t *testing.T) {
	r := newRouter(t)
	cases := []struct {
		message string
		intent  string
	}{
		{"¿Cuál es el VALOR del inventario?", agent.IntentStockValue},
		{"show low stock", agent.IntentLowStock},
		{"Productos con stock bajo en la bodega", agent.IntentLowStock},
		{"operaciones pendientes", agent.IntentPendingOperations},
		{"Recepción de 20 sillas", agent.IntentCreateReceipt},
		{"recibir 20 sillas en Bodega Central", agent.IntentCreateReceipt},
		{"¿Cuántos tornillos hay?", agent.IntentStockLookup},
		{"how many chairs are available", agent.IntentStockLookup},
	}
	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			got, ok := r.Classify(tc.message)
			require.True(t, ok)
			assert.Equal(t, tc.intent, got)
		})
	}

	_, ok := r.Classify("buenos días")
	assert.False(t, ok, "un saludo no corresponde a ninguna intención")
}

// ──────────────────────────────────────────────────────────────────────────────
// Respuestas
// ──────────────────────────────────────────────────────────────────────────────

func TestRoute_TodasLasRespuestasLlevanEtiqueta(t *testing.T) {
	r := newRouter(t)
	for _, msg := range []string{"buenos días", "valor del inventario", "operaciones pendientes", "recibir sillas", "stock bajo"} {
		res := r.Route(context.Background(), "user-1", msg)
		assert.True(t, strings.HasPrefix(res.Answer, agent.DegradedTag), msg)
	}
}

func TestRoute_SinCoincidenciaListaCapacidades(t *testing.T) {
	r := newRouter(t)
	res := r.Route(context.Background(), "user-1", "buenos días")
	assert.Empty(t, res.Intent)
	assert.Contains(t, res.Answer, "Puedo ayudarte con")
}

func TestRoute_RecepcionConFormatoInvalidoDevuelveAyuda(t *testing.T) {
	r := newRouter(t)
	res := r.Route(context.Background(), "user-1", "recibir sillas")
	assert.Equal(t, agent.IntentCreateReceipt, res.Intent)
	assert.Nil(t, res.Draft)
	assert.Contains(t, res.Answer, "recibir <cantidad> <producto> en <ubicación>")
}

func TestRoute_RecepcionCreaBorradorDeAgente(t *testing.T) {
	r := newRouter(t)
	res := r.Route(context.Background(), "user-1", "recibir 20 silla de oficina en Zona de Producción proveedor Muebles del Valle")

	require.NotNil(t, res.Draft, res.Answer)
	assert.Equal(t, entity.MoveReceipt, res.Draft.Type)
	assert.Equal(t, entity.OriginAgent, res.Draft.Origin)
	assert.Equal(t, "Muebles del Valle", res.Draft.Counterparty)
	assert.Contains(t, res.Answer, "¿Confirmas")
}

func TestRoute_ConsultaDeStockConUbicacion(t *testing.T) {
	r := newRouter(t)
	res := r.Route(context.Background(), "user-1", "¿Cuántos tornillos hay en Bodega Central?")

	assert.Equal(t, agent.IntentStockLookup, res.Intent)
	assert.Equal(t, tools.ToolGetStock, res.Tool)
	assert.Contains(t, res.Answer, "Tornillo M8")
	assert.Contains(t, res.Answer, "Bodega Central: 320")
	assert.NotContains(t, res.Answer, "Zona de Producción", "filtra por la ubicación pedida")
}

func TestRoute_ProductoDesconocidoExplicaElFallo(t *testing.T) {
	r := newRouter(t)
	res := r.Route(context.Background(), "user-1", "¿cuántos unicornios hay?")
	assert.True(t, strings.HasPrefix(res.Answer, agent.DegradedTag))
	assert.Contains(t, res.Answer, "unicornios")
}

func TestRouteReadOnly_NoCreaBorradores(t *testing.T) {
	r := newRouter(t)
	res := r.RouteReadOnly(context.Background(), "user-1", "recibir 20 silla de oficina en Zona de Producción")
	assert.Equal(t, agent.IntentCreateReceipt, res.Intent)
	assert.Nil(t, res.Draft)
	assert.Empty(t, res.Tool)
	assert.True(t, strings.HasPrefix(res.Answer, agent.DegradedTag))

	lookup := r.RouteReadOnly(context.Background(), "user-1", "¿Cuántos tornillos hay en Bodega Central?")
	assert.Equal(t, tools.ToolGetStock, lookup.Tool, "las consultas siguen respondiendo")
}
