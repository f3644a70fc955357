package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-oracle-api/internal/application/inventory"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/infrastructure/memory"
)

type captureGenerator struct {
	doc inventory.MoveDocument
	err error
}

func (g *captureGenerator) GenerateMovePDF(_ context.Context, doc inventory.MoveDocument) ([]byte, error) {
	g.doc = doc
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.3"), nil
}

func newDocumentUseCase(f *fixture, gen inventory.DocumentGenerator) *inventory.DocumentUseCase {
	return inventory.NewDocumentUseCase(
		memory.NewMoveRepository(f.store),
		memory.NewProductRepository(f.store),
		memory.NewLocationRepository(f.store),
		gen,
	)
}

func TestDocument_TrasladoCompletado(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveTransfer, FromLocationID: locA, ToLocationID: locB,
		Lines: []inventory.LineInput{{ProductID: prodChairs, Quantity: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, m.ID)
	require.NoError(t, err)

	gen := &captureGenerator{}
	pdf, name, err := newDocumentUseCase(f, gen).Download(ctx, m.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Contains(t, name, ".pdf")

	assert.Equal(t, "Bodega A", gen.doc.FromLocation)
	assert.Equal(t, "Bodega B", gen.doc.ToLocation)
	require.Len(t, gen.doc.Lines, 1)
	assert.Equal(t, "Sillas", gen.doc.Lines[0].ProductName)
	assert.True(t, gen.doc.TotalValue.Equal(decimal.NewFromInt(50)), "5 × 10")
}

func TestDocument_CanceladaYInexistente(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveReceipt, ToLocationID: locA,
		Lines: []inventory.LineInput{{ProductID: prodChairs, Quantity: decimal.NewFromInt(1)}},
	})
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, m.ID)
	require.NoError(t, err)

	uc := newDocumentUseCase(f, &captureGenerator{})
	_, _, err = uc.Download(ctx, m.ID)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, _, err = uc.Download(ctx, "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDocument_ErrorDelGenerador(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.CreateMoveInput{
		Type: entity.MoveReceipt, ToLocationID: locA,
		Lines: []inventory.LineInput{{ProductID: prodChairs, Quantity: decimal.NewFromInt(3)}},
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, _, err = newDocumentUseCase(f, &captureGenerator{err: boom}).Download(ctx, m.ID)
	assert.ErrorIs(t, err, boom)
}
