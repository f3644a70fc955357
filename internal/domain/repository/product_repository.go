package repository

import (
	"context"

	"github.com/jhoicas/stock-oracle-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos (DIP).
// GetByID, GetBySKU y FindByName devuelven domain.ErrNotFound si no existe.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	// FindByName busca por nombre exacto sin distinguir mayúsculas.
	FindByName(ctx context.Context, name string) (*entity.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}
