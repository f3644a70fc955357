package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
	"github.com/jhoicas/stock-oracle-api/internal/domain/repository"
)

// DocumentUseCase genera el comprobante PDF de una operación (recepción, entrega, traslado o ajuste).
type DocumentUseCase struct {
	moves     repository.MoveRepository
	products  repository.ProductRepository
	locations repository.LocationRepository
	generator DocumentGenerator
	now       func() time.Time
}

// NewDocumentUseCase construye el caso de uso inyectando sus dependencias.
func NewDocumentUseCase(
	moves repository.MoveRepository,
	products repository.ProductRepository,
	locations repository.LocationRepository,
	generator DocumentGenerator,
) *DocumentUseCase {
	return &DocumentUseCase{moves: moves, products: products, locations: locations, generator: generator, now: time.Now}
}

// Download devuelve el PDF y su nombre de archivo.
//
// Retorna:
//   - domain.ErrNotFound si la operación no existe.
//   - domain.ErrInvalidInput si la operación está cancelada.
func (uc *DocumentUseCase) Download(ctx context.Context, moveID string) (pdfBytes []byte, filename string, err error) {
	m, err := uc.moves.GetByID(ctx, moveID)
	if err != nil {
		return nil, "", err
	}
	if m.Status == entity.StatusCancelled {
		return nil, "", fmt.Errorf("%w: la operación %s está cancelada", domain.ErrInvalidInput, m.Reference)
	}

	doc := MoveDocument{
		Move:         m,
		FromLocation: uc.locationName(ctx, m.FromLocationID),
		ToLocation:   uc.locationName(ctx, m.ToLocationID),
		TotalValue:   decimal.Zero,
		GeneratedAt:  uc.now(),
	}
	for _, l := range m.Lines {
		line := DocumentLine{Requested: l.RequestedQuantity, Done: l.DoneQuantity, ProductName: l.ProductID}
		if p, err := uc.products.GetByID(ctx, l.ProductID); err == nil {
			line.SKU, line.ProductName, line.UnitMeasure, line.UnitCost = p.SKU, p.Name, p.UnitMeasure, p.CostPrice
		}
		qty := l.RequestedQuantity
		if m.Status == entity.StatusDone {
			qty = l.DoneQuantity
		}
		line.Value = qty.Abs().Mul(line.UnitCost).Round(2)
		doc.TotalValue = doc.TotalValue.Add(line.Value)
		doc.Lines = append(doc.Lines, line)
	}

	pdfBytes, err = uc.generator.GenerateMovePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("documento: generar pdf: %w", err)
	}
	return pdfBytes, strings.ToLower(m.Reference) + ".pdf", nil
}

func (uc *DocumentUseCase) locationName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	if l, err := uc.locations.GetByID(ctx, id); err == nil {
		return l.Name
	}
	return id
}
