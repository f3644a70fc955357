package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-oracle-api/internal/application/ports"
	"github.com/jhoicas/stock-oracle-api/internal/domain"
	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// resolveProduct: SKU exacto, luego nombre exacto, luego el mejor candidato por similitud
// si supera el puntaje mínimo. Si nada coincide, EntityNotFound con el texto original.
func (d *Dispatcher) resolveProduct(ctx context.Context, text string) (*entity.Product, error) {
	text = strings.TrimSpace(text)
	if p, err := d.products.GetBySKU(ctx, text); err == nil {
		return p, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("producto por SKU: %w", err)
	}
	if p, err := d.products.FindByName(ctx, text); err == nil {
		return p, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("producto por nombre: %w", err)
	}
	if id, ok := d.bestMatch(ctx, ports.SimilarityProducts, text); ok {
		p, err := d.products.GetByID(ctx, id)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("producto: %w", err)
		}
	}
	return nil, domain.EntityNotFound("producto", text)
}

func (d *Dispatcher) resolveLocation(ctx context.Context, text string) (*entity.Location, error) {
	text = strings.TrimSpace(text)
	if l, err := d.locations.FindByName(ctx, text); err == nil {
		return l, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("ubicación por nombre: %w", err)
	}
	if id, ok := d.bestMatch(ctx, ports.SimilarityLocations, text); ok {
		l, err := d.locations.GetByID(ctx, id)
		if err == nil {
			return l, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ubicación: %w", err)
		}
	}
	return nil, domain.EntityNotFound("ubicación", text)
}

func (d *Dispatcher) bestMatch(ctx context.Context, kind ports.SimilarityKind, text string) (string, bool) {
	if d.similarity == nil {
		return "", false
	}
	matches, err := d.similarity.Search(ctx, kind, text, 1)
	if err != nil {
		d.log.Warn().Err(err).Str("kind", string(kind)).Msg("similitud no disponible al resolver nombre")
		return "", false
	}
	if len(matches) == 0 || matches[0].Similarity < d.minScore {
		return "", false
	}
	return matches[0].ID, true
}
