package retrieval_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/application/retrieval"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

type failingSearcher struct{}

func (failingSearcher) Search(context.Context, ports.SimilarityKind, string, int) ([]ports.SimilarityMatch, error) {
	return nil, errors.New("similitud caída")
}

type slowSearcher struct{}

func (slowSearcher) Search(ctx context.Context, _ ports.SimilarityKind, _ string, _ int) ([]ports.SimilarityMatch, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type failingMoves struct {
	repository.MoveRepository
}

func (failingMoves) List(context.Context, entity.MoveFilter) ([]*entity.Move, error) {
	return nil, errors.New("sin conexión")
}

func newBuilder(s *memory.Store, sim ports.SimilaritySearcher, moves repository.MoveRepository) *retrieval.Builder {
	if moves == nil {
		moves = memory.NewMoveRepository(s)
	}
	return retrieval.NewBuilder(
		retrieval.NewGuardedSearcher(sim, 50*time.Millisecond, nil),
		memory.NewProductRepository(s),
		memory.NewLocationRepository(s),
		memory.NewStockRepository(s),
		moves,
		retrieval.DefaultOptions(),
		nil,
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Build
// ──────────────────────────────────────────────────────────────────────────────

func TestBuild_IncluyeCandidatosStockYKPIs(t *testing.T) {
	s := memory.NewSeeded()
	b := newBuilder(s, memory.NewSimilaritySearcher(s), nil)

	snap := b.Build(context.Background(), "cuántas sillas de oficina hay en bodega central")

	require.NotEmpty(t, snap.Products, "debe haber candidatos de producto")
	assert.Equal(t, "SIL-OF", snap.Products[0].Product.SKU)
	assert.Len(t, snap.Products[0].Stock, 2, "la silla tiene stock en dos ubicaciones")
	require.NotEmpty(t, snap.Locations)
	assert.Equal(t, "Bodega Central", snap.Locations[0].Location.Name)

	assert.Equal(t, 6, snap.KPIs.LowStockCount)
	assert.True(t, snap.KPIs.TotalValue.IsPositive())
	assert.Empty(t, snap.Degraded)
	assert.False(t, snap.BuiltAt.IsZero())

	section := snap.PromptSection()
	assert.Contains(t, section, "Silla de oficina")
	assert.Contains(t, section, "Alertas de stock bajo")
	assert.Contains(t, section, "Operaciones abiertas: 0")
}

func TestBuild_SimilitudCaidaNoAbortaElContexto(t *testing.T) {
	s := memory.NewSeeded()
	b := newBuilder(s, failingSearcher{}, nil)

	snap := b.Build(context.Background(), "tornillos")

	assert.Empty(t, snap.Products, "sin similitud no hay candidatos")
	assert.Empty(t, snap.Locations)
	assert.Equal(t, 6, snap.KPIs.LowStockCount, "los KPIs se calculan igual")
	assert.Empty(t, snap.Degraded, "la similitud degradada devuelve lista vacía sin marcar error")
}

func TestBuild_SimilitudLentaRespetaTimeout(t *testing.T) {
	s := memory.NewSeeded()
	b := newBuilder(s, slowSearcher{}, nil)

	start := time.Now()
	snap := b.Build(context.Background(), "tornillos")

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Empty(t, snap.Products)
}

func TestBuild_FalloDeOperacionesMarcaParteDegradada(t *testing.T) {
	s := memory.NewSeeded()
	b := newBuilder(s, memory.NewSimilaritySearcher(s), failingMoves{MoveRepository: memory.NewMoveRepository(s)})

	snap := b.Build(context.Background(), "tornillos")

	assert.Contains(t, snap.Degraded, "operaciones recientes")
	assert.Empty(t, snap.RecentMoves)
	assert.NotEmpty(t, snap.Products, "las demás partes siguen disponibles")
	assert.Contains(t, snap.PromptSection(), "contexto parcial")
}
